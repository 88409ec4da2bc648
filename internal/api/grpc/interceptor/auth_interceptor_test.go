package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rentaltoll-backend/internal/security"
)

func TestAuthInterceptor_Unary(t *testing.T) {
	tm := security.NewTokenManager("0123456789abcdef0123456789abcdef")
	token, err := tm.GenerateToken("operator", time.Hour)
	require.NoError(t, err)

	ai := NewAuthInterceptor(tm, "/pkg.Svc/Public")
	handler := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }

	tests := []struct {
		name   string
		method string
		md     metadata.MD
		code   codes.Code
	}{
		{"public method", "/pkg.Svc/Public", nil, codes.OK},
		{"no metadata", "/pkg.Svc/Private", nil, codes.Unauthenticated},
		{"no header", "/pkg.Svc/Private", metadata.Pairs("x", "y"), codes.Unauthenticated},
		{"bad token", "/pkg.Svc/Private", metadata.Pairs("authorization", "Bearer nope"), codes.Unauthenticated},
		{"valid token", "/pkg.Svc/Private", metadata.Pairs("authorization", "Bearer "+token), codes.OK},
		{"lowercase scheme", "/pkg.Svc/Private", metadata.Pairs("authorization", "bearer "+token), codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			resp, err := ai.Unary()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, handler)
			assert.Equal(t, tt.code, status.Code(err))
			if tt.code == codes.OK {
				assert.Equal(t, "ok", resp)
			}
		})
	}
}
