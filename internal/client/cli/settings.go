package cli

import (
	"context"
	"os"
)

// ShowConfig prints whether the apisperu.com integration token is set.
func (a *App) ShowConfig(ctx context.Context) error {
	return a.editor.LoadConfig(ctx)
}

// SetToken stores a new apisperu.com integration token.
func (a *App) SetToken(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter apisperu.com token", os.Stdout)
	if err != nil {
		return err
	}
	return a.reportBusy(a.editor.SaveConfig(ctx, token))
}

// Backup downloads the service database and writes it under the configured
// backup directory.
func (a *App) Backup(ctx context.Context) error {
	_, err := a.editor.Backup(ctx)
	return err
}
