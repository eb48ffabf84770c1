// Copyright 2026 The Upsight Authors
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

package http

import (
	"context"

	"github.com/upsight-edu/upsight/internal/authz"
)

type contextKey string

const subjectKey contextKey = "subject"

// GetSubject retrieves the authenticated subject from context. The zero
// Subject means the request carried no valid token.
func GetSubject(ctx context.Context) (authz.Subject, bool) {
	sub, ok := ctx.Value(subjectKey).(authz.Subject)
	return sub, ok
}

func withSubject(ctx context.Context, sub authz.Subject) context.Context {
	return context.WithValue(ctx, subjectKey, sub)
}
