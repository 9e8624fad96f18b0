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


// Package ai provides the model abstraction used by lorekeeper.
//
// Extraction code depends only on the Model interface defined here, so the
// pipeline can be driven by any chat-capable backend, or by a scripted test
// double, without changes.
//
// # Design Principles
//
// The package is designed around one narrow interface:
//
//   - Model: sends a conversation and returns the completion text
//
// Per-call behavior (streaming, temperature, output limit) is passed as
// InvokeOption values. Streaming output goes to a StreamFunc handed to the
// call that wants it; there is no package-level callback.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/langchain: Production adapters for OpenAI, Ollama, Anthropic and
//     Bedrock built on langchaingo. The provider is chosen once, when the
//     model is constructed.
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (langchain.NewModel) return the ai.Model INTERFACE to
// prevent accidental coupling to a concrete provider.
//
//	model, err := langchain.NewModel(ctx, cfg)  // returns ai.Model
//
// Test utility constructors (mock.NewMockModel) return CONCRETE types to
// enable test assertions and behavior injection via the mock's public
// fields and methods (InvokeFunc, CallCount, Calls, Reset).
//
//	m := mock.NewMockModel(`[{"name":"Aria","content":"A knight."}]`)
//	count := m.CallCount()
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderOllama),
//	    ai.WithModel("qwen2.5:7b"),
//	)
//	model, err := langchain.NewModel(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := model.Invoke(ctx, []ai.Message{
//	    ai.System("Extract entries as JSON."),
//	    ai.User(chunk),
//	})
package ai
