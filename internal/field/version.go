package field

// AvailableVersion returns the first version slot (1..3) whose value is empty
// for the given language, scanning in order. When all three slots hold
// content it returns 1: there is no fourth slot, so new content overwrites
// the first.
func AvailableVersion(f Field, language string) int {
	for v := 1; v <= MaxVersions; v++ {
		if f.ValueAt(language, v) == "" {
			return v
		}
	}
	return 1
}
