// Package cover decodes the first post-header line of a .FEC filing, which
// carries summary metadata about the filing itself.
package cover

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/NickCrews/feco3/lineparse"
)

// Cover is summary information about a filing: its form (e.g. "F3X") and
// the committee that filed it.
type Cover struct {
	FormType         string
	FilerCommitteeID string
}

// ParseError reports a cover line that parsed structurally but was missing
// a required field.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return fmt.Sprintf("cover: %s", e.Message) }

// Parse decodes raw, the first raw field vector after the header, under
// the strict literal policy (a malformed cover line is always a terminal
// error, never coerced).
func Parse(fecVersion string, raw []string) (Cover, error) {
	logrus.WithField("version", fecVersion).Debug("cover: parsing cover line")

	rec, err := (lineparse.LiteralParser{}).Parse(fecVersion, raw)
	if err != nil {
		return Cover{}, err
	}

	v, ok := rec.GetValue("filer_committee_id_number")
	if !ok {
		return Cover{}, &ParseError{Message: "no 'filer_committee_id_number' in cover line"}
	}

	c := Cover{
		FormType:         rec.LineCode,
		FilerCommitteeID: v.String(),
	}
	logrus.WithFields(logrus.Fields{"form_type": c.FormType, "filer_committee_id": c.FilerCommitteeID}).
		Debug("cover: parsed cover line")
	return c, nil
}
