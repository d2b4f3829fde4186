package structures

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Dhanunjay2704/autostruct/pkg/errcodes"
	"github.com/Dhanunjay2704/autostruct/pkg/layout"
	"github.com/Dhanunjay2704/autostruct/pkg/scaffold"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	structureService *Service
}

func (h *handler) parse(c echo.Context) error {
	ctx := c.Request().Context()

	params := ParseStructurePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	text, format, err := h.resolveInput(params.Text, params.Format, params.FormFiles)
	if err != nil {
		return err
	}

	tree, err := h.structureService.ParseTree(ctx, ParseOptions{Text: text, Format: format})
	if err != nil {
		return domainError(err)
	}

	nodes, maxDepth := tree.Stats()
	resp := &ParseStructureResponse{
		Tree:     tree,
		Nodes:    nodes,
		MaxDepth: maxDepth,
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) preview(c echo.Context) error {
	ctx := c.Request().Context()

	params := PreviewStructurePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	text, format, err := h.resolveInput(params.Text, params.Format, params.FormFiles)
	if err != nil {
		return err
	}

	summary, err := h.structureService.Run(ctx, RunOptions{
		Text:    text,
		Format:  format,
		BaseDir: params.BasePath,
		DryRun:  true,
	})
	if err != nil {
		return domainError(err)
	}

	entries := make([]PreviewEntry, 0, len(summary.Results))
	for _, outcome := range summary.Results {
		entries = append(entries, PreviewEntry{Path: outcome.Path, Kind: outcome.Kind})
	}
	resp := &PreviewStructureResponse{
		ID:      summary.ID,
		BaseDir: summary.BaseDir,
		Entries: entries,
		Total:   len(entries),
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateStructurePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	text, format, err := h.resolveInput(params.Text, params.Format, params.FormFiles)
	if err != nil {
		return err
	}

	summary, err := h.structureService.Run(ctx, RunOptions{
		Text:    text,
		Format:  format,
		BaseDir: params.BasePath,
		DryRun:  params.DryRun,
	})
	if err != nil {
		return domainError(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, summary))
}

// resolveInput picks between inline text and an uploaded file and settles the
// format. Uploads infer their format from the file extension when the request
// doesn't name one.
func (h *handler) resolveInput(text, format string, files map[string]*multipart.FileHeader) (string, string, error) {
	file := files["file"]
	if file == nil {
		if text == "" {
			return "", "", errcodes.ValidationError(`Either "text" or an uploaded "file" is required.`)
		}
		if format == "" {
			return "", "", errcodes.ValidationError(`"format" is required with inline text.`)
		}
		return text, format, nil
	}

	if text != "" {
		return "", "", errcodes.ValidationError(`"text" and "file" can't both be provided.`)
	}

	inferred, err := layout.FormatFromFilename(file.Filename)
	if err != nil {
		return "", "", errcodes.ValidationError(err.Error())
	}
	if format == "" {
		format = inferred
	}

	if max := h.structureService.config.MaxInputBytes; max > 0 && file.Size > int64(max) {
		return "", "", errcodes.ValidationError(fmt.Sprintf("Uploaded file is %d bytes, which is larger than the limit of %d bytes.", file.Size, max))
	}

	f, err := file.Open()
	if err != nil {
		return "", "", errors.WithStack(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", errors.WithStack(err)
	}

	if len(data) > 0 && !isTextual(mimetype.Detect(data)) {
		return "", "", errcodes.ValidationError("Uploaded file must be text, not binary.")
	}

	return string(data), format, nil
}

// isTextual walks the MIME hierarchy looking for text/plain, which is the
// ancestor of every text-based type mimetype knows about.
func isTextual(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// domainError maps parser, validator, and executor failures onto API error
// codes so clients get a 422 with details instead of an opaque 500.
func domainError(err error) error {
	switch e := err.(type) {
	case *layout.ParseError:
		details := map[string]interface{}{"format": e.Format}
		if e.Line > 0 {
			details["line"] = e.Line
		}
		if e.Column > 0 {
			details["column"] = e.Column
		}
		return errcodes.ParseFailed(e.Error(), details)
	case *layout.ValidationError:
		return errcodes.InvalidStructure(e.Error(), map[string]interface{}{"path": e.Path})
	case *scaffold.BaseDirError:
		return errcodes.ExecutionFailed(e.Error(), map[string]interface{}{"base_dir": e.Path})
	}
	return err
}
