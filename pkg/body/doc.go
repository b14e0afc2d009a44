// Copyright 2025 Tom Barlow
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

/*
Package body builds request bodies and converts between the string, byte
and stream forms of payloads.

Form bodies are assembled with a Multipart builder. When it only holds
plain fields it encodes as application/x-www-form-urlencoded; once a file
is attached (or multipart is forced) it streams multipart/form-data
through an io.Pipe so large files are never buffered in memory:

	form := body.NewMultipart().
		Field("name", "fluent").
		File("upload", "/tmp/report.pdf")
	r, contentType, err := form.Encode()

Charset names are resolved with the WHATWG encoding index, so "latin1",
"iso-8859-1" and "windows-1252" all work.
*/
package body
