package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"contactsync/internal/platform/restclient"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

func okMark() string   { return green.Sprint("✓") }
func failMark() string { return red.Sprint("✗") }

// printer writes results as text or JSON.
type printer struct {
	format string
	out    io.Writer
	errOut io.Writer
}

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// result prints v as JSON, or runs text for the text format.
func (p printer) result(v any, text func(w io.Writer)) error {
	if p.format == "json" {
		return p.json(v)
	}
	text(p.out)
	return nil
}

type apiError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Stage       string `json:"stage"`
}

// failure reports a failed call and returns the error for cobra's exit code.
func (p printer) failure(op string, err error) error {
	var status *restclient.StatusError
	if errors.As(err, &status) {
		var body apiError
		if json.Unmarshal(status.Body, &body) == nil && body.Error != "" {
			msg := body.Error
			if body.Description != "" {
				msg += ": " + body.Description
			}
			if body.Stage != "" {
				fmt.Fprintf(p.errOut, "%s %s failed at stage %s (%s)\n", failMark(), op, yellow.Sprint(body.Stage), msg)
			} else {
				fmt.Fprintf(p.errOut, "%s %s failed (%s)\n", failMark(), op, msg)
			}
			return fmt.Errorf("%s failed with status %d", op, status.StatusCode)
		}
	}
	fmt.Fprintf(p.errOut, "%s %s failed: %v\n", failMark(), op, err)
	return err
}
