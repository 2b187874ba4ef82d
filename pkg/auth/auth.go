package auth

import (
	"context"

	"github.com/pkg/errors"
)

const (
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"
)

type authKey struct{}

type authInfo struct {
	userName string
	role     string
}

var ErrNoAuthContext = errors.New("auth context is empty")

func SetAuthContext(ctx context.Context, userName, role string) context.Context {
	return context.WithValue(ctx, authKey{}, authInfo{userName: userName, role: role})
}

func GetUserName(ctx context.Context) (string, error) {
	info, ok := ctx.Value(authKey{}).(authInfo)
	if !ok || info.userName == "" {
		return "", ErrNoAuthContext
	}
	return info.userName, nil
}

func GetUserRole(ctx context.Context) (string, error) {
	info, ok := ctx.Value(authKey{}).(authInfo)
	if !ok || info.role == "" {
		return "", ErrNoAuthContext
	}
	return info.role, nil
}
