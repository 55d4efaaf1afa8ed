// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testlink is a client for the TestLink XML-RPC API.
//
// An Invoker performs one method call. XMLRPCInvoker is the HTTP
// implementation: it adds the developer key to every call, bounds each
// round trip with a timeout and turns TestLink error codes, XML-RPC faults
// and transport failures into *Error values with a Kind.
//
// Client sits on top of an Invoker. Each Client method validates its input,
// maps it to the parameter struct the TestLink method expects and returns
// the decoded payload unchanged. Validation failures never reach the
// backend.
//
// Gaps lists the operations TestLink has no method for; they always fail
// with KindUnsupported.
package testlink
