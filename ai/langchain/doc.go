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


// Package langchain implements ai.Model using langchaingo.
//
// One adapter exists per provider (OpenAI, Ollama, Anthropic, Bedrock). The
// adapter is picked by NewModel from ai.Config.Provider; the returned model
// then behaves identically regardless of backend.
//
// Local OpenAI-compatible servers (LocalAI, vLLM, llama.cpp) are reached
// through the OpenAI provider with a custom Host and no API key.
//
// Example:
//
//	cfg := ai.NewConfig(ai.WithProvider(ai.ProviderOpenAI), ai.WithModel("gpt-4o-mini"))
//	model, err := langchain.NewModel(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	out, err := model.Invoke(ctx, []ai.Message{ai.User("hello")},
//	    ai.WithStream(func(ctx context.Context, chunk string) error {
//	        fmt.Print(chunk)
//	        return nil
//	    }))
package langchain
