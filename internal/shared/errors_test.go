package shared

import (
	"errors"
	"io"
	"testing"
)

func TestAuthError(t *testing.T) {
	tt := []struct {
		name    string
		err     *AuthError
		want    string
		wantErr error
	}{
		{
			name:    "invalid credentials with message",
			err:     InvalidCredentials("invalid_client"),
			want:    "Error 400 : invalid_client",
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "invalid credentials without message",
			err:     InvalidCredentials(""),
			want:    "Error 400 : Bad Request",
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "unexpected status",
			err:     UnexpectedStatus(503),
			want:    "Error 503 : Something went wrong",
			wantErr: ErrUnexpectedStatus,
		},
		{
			name:    "malformed response",
			err:     MalformedResponse(io.ErrUnexpectedEOF),
			want:    "Error 200 : Malformed token response",
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "transport",
			err:     AuthTransportError(io.EOF),
			want:    "Error : Could not reach the token endpoint",
			wantErr: ErrTransport,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
			if !errors.Is(tc.err, tc.wantErr) {
				t.Errorf("expected errors.Is(%v) to hold", tc.wantErr)
			}
		})
	}

	t.Run("unwraps cause", func(t *testing.T) {
		err := AuthTransportError(io.EOF)
		if !errors.Is(err, io.EOF) {
			t.Error("expected cause to be reachable")
		}

		var authErr *AuthError
		wrapped := errors.Join(errors.New("context"), err)
		if !errors.As(wrapped, &authErr) {
			t.Fatal("expected errors.As to find AuthError")
		}
		if authErr.Kind != ErrTransport {
			t.Errorf("unexpected kind %v", authErr.Kind)
		}
	})
}

func TestShapeError(t *testing.T) {
	err := &ShapeError{Index: 3, Field: "track.id"}

	if !errors.Is(err, ErrShape) {
		t.Error("expected ShapeError to unwrap to ErrShape")
	}
	if got := err.Error(); got != "unexpected entry shape: entry 3 is missing track.id" {
		t.Errorf("unexpected message %q", got)
	}
}
