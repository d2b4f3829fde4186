package structures

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dhanunjay2704/autostruct/pkg/binder"
	"github.com/Dhanunjay2704/autostruct/pkg/config"
	"github.com/Dhanunjay2704/autostruct/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*handler, *echo.Echo) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return &handler{structureService: NewService(config.NewForTest())}, e
}

func newJSONContext(t *testing.T, e *echo.Echo, path string, payload map[string]interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func newUploadContext(t *testing.T, e *echo.Echo, path string, fields map[string]string, filename string, fileContent []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandlerParse_InlineText(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, rr := newJSONContext(t, e, "/structures/parse", map[string]interface{}{
		"text":   "src/\n├── main.go\n└── util.go\n",
		"format": "ascii",
	})

	err := h.parse(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ParseStructureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Nodes)
	assert.Equal(t, 2, resp.MaxDepth)
	require.NotNil(t, resp.Tree)
	assert.Equal(t, "src", resp.Tree.Root.Name)
	require.Len(t, resp.Tree.Root.Children, 2)
	assert.Equal(t, "main.go", resp.Tree.Root.Children[0].Name)
}

func TestHandlerParse_YmlFormatAlias(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, rr := newJSONContext(t, e, "/structures/parse", map[string]interface{}{
		"text":   "src:\n  app.py:\n",
		"format": "yml",
	})

	err := h.parse(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandlerParse_MissingInput(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newJSONContext(t, e, "/structures/parse", map[string]interface{}{
		"format": "ascii",
	})

	err := h.parse(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Equal(t, `Either "text" or an uploaded "file" is required.`, codeErr.Message)
}

func TestHandlerParse_MissingFormatWithInlineText(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newJSONContext(t, e, "/structures/parse", map[string]interface{}{
		"text": "src/\n",
	})

	err := h.parse(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, `"format" is required with inline text.`, codeErr.Message)
}

func TestHandlerParse_UnknownFormat(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newJSONContext(t, e, "/structures/parse", map[string]interface{}{
		"text":   "src/\n",
		"format": "toml",
	})

	err := h.parse(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Equal(t, `"format" must be one of the following: "ascii", "json", "yaml", "yml"`, codeErr.Message)
}

func TestHandlerParse_UnknownParameter(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newJSONContext(t, e, "/structures/parse", map[string]interface{}{
		"text":   "src/\n",
		"format": "ascii",
		"fromat": "ascii",
	})

	err := h.parse(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "unknown_parameter", codeErr.Code)
}

func TestHandlerParse_ParseErrorDetails(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newJSONContext(t, e, "/structures/parse", map[string]interface{}{
		"text":   "{\n  \"src\": 5\n}",
		"format": "json",
	})

	err := h.parse(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnprocessableEntity, codeErr.HTTPCode)
	assert.Equal(t, "parse_error", codeErr.Code)
	assert.Equal(t, "json", codeErr.Details["format"])
	assert.Equal(t, 2, codeErr.Details["line"])
}

func TestHandlerParse_FileUpload(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, rr := newUploadContext(t, e, "/structures/parse", nil, "layout.json", []byte(`{"src": {"main.go": null}}`))

	err := h.parse(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ParseStructureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Nodes)
}

func TestHandlerParse_FileUploadInfersASCII(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, rr := newUploadContext(t, e, "/structures/parse", nil, "layout.txt", []byte("src/\n└── main.go\n"))

	err := h.parse(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandlerParse_FileAndTextConflict(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newUploadContext(t, e, "/structures/parse", map[string]string{"text": "src/"}, "layout.txt", []byte("src/\n"))

	err := h.parse(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, `"text" and "file" can't both be provided.`, codeErr.Message)
}

func TestHandlerParse_UnsupportedFileExtension(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newUploadContext(t, e, "/structures/parse", nil, "layout.csv", []byte("a,b\n"))

	err := h.parse(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Contains(t, codeErr.Message, "unsupported file extension")
}

func TestHandlerParse_BinaryUpload(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d}
	c, _ := newUploadContext(t, e, "/structures/parse", nil, "layout.txt", png)

	err := h.parse(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "Uploaded file must be text, not binary.", codeErr.Message)
}

func TestHandlerPreview(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)
	base := filepath.Join(t.TempDir(), "target")

	c, rr := newJSONContext(t, e, "/structures/preview", map[string]interface{}{
		"text":      "docs:\n  guide.md:\n",
		"format":    "yaml",
		"base_path": base,
	})

	err := h.preview(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp PreviewStructureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, base, resp.BaseDir)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, filepath.Join(base, "docs"), resp.Entries[0].Path)
	assert.Equal(t, "directory", resp.Entries[0].Kind)
	assert.Equal(t, filepath.Join(base, "docs", "guide.md"), resp.Entries[1].Path)
	assert.Equal(t, "file", resp.Entries[1].Kind)

	// Previewing never creates anything.
	_, statErr := os.Stat(base)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHandlerPreview_MissingBasePath(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newJSONContext(t, e, "/structures/preview", map[string]interface{}{
		"text":   "docs:\n",
		"format": "yaml",
	})

	err := h.preview(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Equal(t, `"base_path" is required`, codeErr.Message)
}

func TestHandlerPreview_RelativeBasePath(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newJSONContext(t, e, "/structures/preview", map[string]interface{}{
		"text":      "docs:\n",
		"format":    "yaml",
		"base_path": "relative/dir",
	})

	err := h.preview(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, `"base_path" must be an absolute path`, codeErr.Message)
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)
	base := t.TempDir()

	c, rr := newJSONContext(t, e, "/structures/create", map[string]interface{}{
		"text":      `{"src": {"main.go": null}, "README.md": null}`,
		"format":    "json",
		"base_path": base,
	})

	err := h.create(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	var summary RunSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, RunStatusCompleted, summary.Status)
	assert.False(t, summary.DryRun)
	assert.Equal(t, 3, summary.Created)
	require.Len(t, summary.Results, 3)

	info, err := os.Stat(filepath.Join(base, "src"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(base, "README.md"))
	assert.NoError(t, err)
}

func TestHandlerCreate_DryRun(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)
	base := filepath.Join(t.TempDir(), "target")

	c, rr := newJSONContext(t, e, "/structures/create", map[string]interface{}{
		"text":      `{"src": {}}`,
		"format":    "json",
		"base_path": base,
		"dry_run":   true,
	})

	err := h.create(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	var summary RunSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.True(t, summary.DryRun)
	assert.Zero(t, summary.Created)

	_, statErr := os.Stat(base)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHandlerCreate_StructureValidationDetails(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	c, _ := newJSONContext(t, e, "/structures/create", map[string]interface{}{
		"text":      `{"CON": null}`,
		"format":    "json",
		"base_path": t.TempDir(),
	})

	err := h.create(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnprocessableEntity, codeErr.HTTPCode)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Equal(t, "CON", codeErr.Details["path"])
	assert.Contains(t, codeErr.Message, "reserved device name")
}

func TestHandlerCreate_EmptyBody(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/structures/create", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	err := h.create(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "empty_request_body", codeErr.Code)
}
