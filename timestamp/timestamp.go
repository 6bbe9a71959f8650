// Copyright 2022 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package timestamp

import (
	"context"
	"io"
	"time"
)

// TimestampVerifier verifies that a timestamp response covers the given data
// and returns the time asserted by the TSA.
type TimestampVerifier interface {
	Verify(context.Context, io.Reader, io.Reader) (time.Time, error)
}

type Timestamper interface {
	Timestamp(context.Context, io.Reader) ([]byte, error)
}

// TokenVerifier checks the signature and certificate chain of a timestamp
// token. The message imprint is not compared; callers that reconstruct the
// imprint themselves only need the token to be authentic.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token []byte) (time.Time, error)
}

var (
	_ TimestampVerifier = (*TSPVerifier)(nil)
	_ TokenVerifier     = (*TSPVerifier)(nil)
	_ Timestamper       = (*FakeTimestamper)(nil)
	_ TimestampVerifier = (*FakeTimestamper)(nil)
)
