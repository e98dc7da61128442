package cli

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fhuaranca/dniadmin/internal/client/editor"
	"github.com/fhuaranca/dniadmin/internal/client/models"
	"github.com/fhuaranca/dniadmin/internal/client/query"
)

// allowedPageSizes mirrors the page-size options the service accepts.
var allowedPageSizes = []int{10, 20, 50, 100}

// List re-issues the current query; the result is printed when the
// response arrives.
func (a *App) List(ctx context.Context) error {
	a.coord.Refresh(ctx)
	return nil
}

// Search sets the free-text term. The actual request fires after the
// debounce window; an empty term clears the filter and shows all records.
func (a *App) Search(ctx context.Context, term string) error {
	a.coord.SetSearchTerm(ctx, term)
	if n := utf8.RuneCountInString(strings.TrimSpace(term)); n > 0 && n < query.MinSearchLength {
		printlnFn("Search needs at least 3 characters")
	}
	return nil
}

// Page jumps to the requested page number.
func (a *App) Page(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		printlnFn("Usage: page <n>")
		return nil
	}
	a.coord.SetPage(ctx, n)
	return nil
}

// PageSize changes the number of records per page.
func (a *App) PageSize(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		printlnFn("Usage: pagesize <n>")
		return nil
	}
	ok := false
	for _, s := range allowedPageSizes {
		if n == s {
			ok = true
			break
		}
	}
	if !ok {
		printlnFn("Page size must be one of: 10, 20, 50, 100")
		return nil
	}
	a.coord.SetPageSize(ctx, n)
	return nil
}

// Lookup queries a single document number. The result (or failure) is
// rendered by the lookup target; invalid input fails fast without a request.
func (a *App) Lookup(ctx context.Context, dni string) error {
	_, err := a.editor.Lookup(ctx, dni)
	if errors.Is(err, editor.ErrInvalidDocumentNumber) {
		printlnFn("A DNI is exactly 8 digits")
	}
	return nil
}

// promptPersona collects the editable persona fields.
func (a *App) promptPersona() (models.Persona, error) {
	var p models.Persona
	var err error

	if p.NroDoc, err = getSimpleText(a.reader, "Enter DNI (8 digits)", os.Stdout); err != nil {
		return p, err
	}
	if p.Nombres, err = getSimpleText(a.reader, "Enter given names", os.Stdout); err != nil {
		return p, err
	}
	if p.ApellidoPaterno, err = getSimpleText(a.reader, "Enter paternal surname", os.Stdout); err != nil {
		return p, err
	}
	if p.ApellidoMaterno, err = getSimpleText(a.reader, "Enter maternal surname", os.Stdout); err != nil {
		return p, err
	}
	return p, nil
}

// promptID reads a numeric record identifier.
func (a *App) promptID(prompt string) (int64, error) {
	s, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		printlnFn("Record id must be a number")
		return 0, err
	}
	return id, nil
}

// AddRecord creates a persona from interactive input.
func (a *App) AddRecord(ctx context.Context) error {
	p, err := a.promptPersona()
	if err != nil {
		return err
	}
	return a.reportBusy(a.editor.Create(ctx, p))
}

// EditRecord updates an existing persona by id.
func (a *App) EditRecord(ctx context.Context) error {
	id, err := a.promptID("Enter record id to edit")
	if err != nil {
		return err
	}
	p, err := a.promptPersona()
	if err != nil {
		return err
	}
	return a.reportBusy(a.editor.Update(ctx, id, p))
}

// DeleteRecord removes a persona by id.
func (a *App) DeleteRecord(ctx context.Context) error {
	id, err := a.promptID("Enter record id to delete")
	if err != nil {
		return err
	}
	return a.reportBusy(a.editor.Delete(ctx, id))
}

// reportBusy translates the editor's single-mutation-slot rejection into a
// user-visible line. Other errors were already surfaced as notifications.
func (a *App) reportBusy(err error) error {
	if errors.Is(err, editor.ErrBusy) {
		printlnFn("Another change is still in progress, try again")
	}
	return err
}
