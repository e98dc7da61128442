package cli

import (
	"context"
	"os"

	"github.com/fhuaranca/dniadmin/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for credentials and tries to authenticate.
//
// Wrong credentials are not an error: the session controller reports them
// as a notification and the REPL stays usable. On success the first page
// of records is loaded with the configured page size. The password byte
// slice is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	ok, err := a.auth.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}
	if ok {
		a.coord.SetPageSize(ctx, a.config.PageSize)
	}
	return nil
}

// Logout drops the in-memory credentials. Always succeeds.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	return nil
}
