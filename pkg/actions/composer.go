package actions

import (
	"net/url"
	"strings"

	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/template"
)

// composerPath is the host's composer entry point. Interpolated title,
// body, and tags travel as percent-encoded query parameters.
const composerPath = "/new-topic"

// openComposer builds the composer redirect URL. Interpolation happens on
// raw values; url.Values.Encode applies the one and only round of query
// encoding, so characters like '&', '$', and apostrophes round-trip
// exactly through a standard query decode.
func (e *Executor) openComposer(action *models.Action, run *Run, result *Result) error {
	params := action.Composer
	ctx := run.interpolationContext()

	title, err := template.Interpolate(params.Title, ctx)
	if err != nil {
		return err
	}

	body, err := template.Interpolate(params.Body, ctx)
	if err != nil {
		return err
	}

	tags, err := template.InterpolateAll(params.Tags, ctx)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("title", title)
	query.Set("body", body)

	if len(tags) > 0 {
		query.Set("tags", strings.Join(tags, ","))
	}

	result.Redirect = composerPath + "?" + query.Encode()
	result.setOutput(run, action.ID, result.Redirect)

	return nil
}
