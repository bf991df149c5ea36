package search

import (
	"fmt"

	"github.com/poiesic/scout/core"
)

// EnrichQuery appends the education and license requirements of std to query.
// License names are listed in record order, native name before English name.
func EnrichQuery(query string, std core.Standard) string {
	names := make([]string, 0, 2*len(std.MandatoryLicenses))
	for _, l := range std.MandatoryLicenses {
		names = append(names, l.Name, l.NameEn)
	}
	return fmt.Sprintf("%s. Based on professional standard details: find a professional standard similar to: %s, %s, %v",
		query, std.MinEducation, std.MinEducationEn, names)
}
