// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package mock provides test doubles for the ai package.
//
// MockModel implements ai.Model without any network access. Replies are
// scripted up front, or computed by a custom InvokeFunc.
//
// # Usage
//
//	// Scripted replies, returned in order
//	model := mock.NewMockModel(
//	    `[{"name":"Aria","key":"Aria","content":"A knight."}]`,
//	    `[]`,
//	)
//
//	// Failures mixed with successes
//	model := mock.NewScriptedModel(
//	    mock.Reply{Err: errors.New("timeout")},
//	    mock.Reply{Text: `[]`},
//	)
//
//	// Custom behavior
//	model.InvokeFunc = func(ctx context.Context, msgs []ai.Message, opts ai.InvokeOptions) (string, error) {
//	    return `[]`, nil
//	}
//
//	// Check call counts and captured conversations
//	count := model.CallCount()
//	first := model.Calls()[0]
//
// # Default Behavior
//
// A MockModel with no script left returns ErrNoResponse. A cancelled
// context is reported before any scripted reply is consumed.
package mock
