package structures

import (
	"mime/multipart"

	"github.com/Dhanunjay2704/autostruct/pkg/layout"
)

// ParseStructurePayload accepts structure text either inline or as an
// uploaded file under the "file" form field.
type ParseStructurePayload struct {
	Text      string                           `json:"text,omitempty" form:"text"`
	Format    string                           `json:"format,omitempty" form:"format" validate:"omitempty,oneof=ascii json yaml yml"`
	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

// PreviewStructurePayload drives a dry run against a base directory.
type PreviewStructurePayload struct {
	Text      string                           `json:"text,omitempty" form:"text"`
	Format    string                           `json:"format,omitempty" form:"format" validate:"omitempty,oneof=ascii json yaml yml"`
	BasePath  string                           `json:"base_path" form:"base_path" validate:"required,abspath"`
	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

// CreateStructurePayload creates the structure on disk, or previews it when
// dry_run is set.
type CreateStructurePayload struct {
	Text      string                           `json:"text,omitempty" form:"text"`
	Format    string                           `json:"format,omitempty" form:"format" validate:"omitempty,oneof=ascii json yaml yml"`
	BasePath  string                           `json:"base_path" form:"base_path" validate:"required,abspath"`
	DryRun    bool                             `json:"dry_run,omitempty" form:"dry_run"`
	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

// ParseStructureResponse contains the canonical tree for parsed input.
type ParseStructureResponse struct {
	Tree     *layout.Tree `json:"tree"`
	Nodes    int          `json:"nodes"`
	MaxDepth int          `json:"max_depth"`
}

// PreviewEntry is one path a create run would attempt.
type PreviewEntry struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// PreviewStructureResponse contains the response for the preview endpoint.
type PreviewStructureResponse struct {
	ID      string         `json:"id"`
	BaseDir string         `json:"base_dir"`
	Entries []PreviewEntry `json:"entries"`
	Total   int            `json:"total"`
}
