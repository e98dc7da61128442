package cli

import (
	"context"
	"os"
)

// Tokens fetches and prints the API token list.
func (a *App) Tokens(ctx context.Context) error {
	return a.editor.RefreshTokens(ctx)
}

// AddToken creates a new API token. The token value is printed exactly
// once; the server never returns it again.
func (a *App) AddToken(ctx context.Context) error {
	nombre, err := getSimpleText(a.reader, "Enter token name", os.Stdout)
	if err != nil {
		return err
	}
	descripcion, err := getSimpleText(a.reader, "Enter description (optional)", os.Stdout)
	if err != nil {
		return err
	}

	// print the token whenever one came back, even if the follow-up
	// list refresh errored
	tok, err := a.editor.CreateToken(ctx, nombre, descripcion)
	if tok != nil {
		printlnFn("Token (copy it now, it will not be shown again):", tok.Token)
	}
	if err != nil {
		return a.reportBusy(err)
	}
	return nil
}

// DeleteToken removes an API token by id.
func (a *App) DeleteToken(ctx context.Context) error {
	id, err := a.promptID("Enter token id to delete")
	if err != nil {
		return err
	}
	return a.reportBusy(a.editor.DeleteToken(ctx, id))
}

// ToggleToken flips a token's active flag by id.
func (a *App) ToggleToken(ctx context.Context) error {
	id, err := a.promptID("Enter token id to toggle")
	if err != nil {
		return err
	}
	return a.reportBusy(a.editor.ToggleToken(ctx, id))
}
