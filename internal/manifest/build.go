package manifest

import (
	"fmt"
)

// manifestSentinel is the "0" value that causes the external tool to
// refetch the real hash without re-downloading already-present files
// (spec §4.10).
const manifestSentinel = "0"

// BuildInstalledEntry renders the tab-indented WorkshopItemsInstalled
// block for s (spec §4.10 "Build entries").
func BuildInstalledEntry(s SkinInfo) []string {
	return []string{
		fmt.Sprintf("\t\t\"%s\"", s.ID),
		"\t\t{",
		fmt.Sprintf("\t\t\t\"size\"\t\t\"%d\"", s.Size),
		fmt.Sprintf("\t\t\t\"timeupdated\"\t\t\"%d\"", s.TimeUpdated),
		fmt.Sprintf("\t\t\t\"manifest\"\t\t\"%s\"", manifestSentinel),
		"\t\t}",
	}
}

// BuildDetailsEntry renders the tab-indented WorkshopItemDetails block for
// s (spec §4.10 "Build entries").
func BuildDetailsEntry(s SkinInfo) []string {
	return []string{
		fmt.Sprintf("\t\t\"%s\"", s.ID),
		"\t\t{",
		fmt.Sprintf("\t\t\t\"manifest\"\t\t\"%s\"", manifestSentinel),
		fmt.Sprintf("\t\t\t\"timeupdated\"\t\t\"%d\"", s.TimeUpdated),
		fmt.Sprintf("\t\t\t\"timetouched\"\t\t\"%d\"", s.TimeTouched),
		fmt.Sprintf("\t\t\t\"latest_timeupdated\"\t\t\"%d\"", s.TimeUpdated),
		fmt.Sprintf("\t\t\t\"latest_manifest\"\t\t\"%s\"", manifestSentinel),
		"\t\t}",
	}
}
