package precheck

import (
	"os"

	"github.com/tidwall/gjson"

	"github.com/cursor-tools/cursor-patch/internal/patching"
)

// ReadVersion returns the raw "version" string of a package descriptor.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", patching.Wrap(patching.DescriptorReadError, path, "read descriptor", err)
	}
	if !gjson.ValidBytes(data) {
		return "", patching.Errorf(patching.DescriptorReadError, path, "descriptor is not valid JSON")
	}

	field := gjson.GetBytes(data, "version")
	if !field.Exists() {
		return "", patching.Errorf(patching.DescriptorReadError, path, "descriptor has no version field")
	}
	if field.Type != gjson.String {
		return "", patching.Errorf(patching.DescriptorReadError, path, "descriptor version is %s, not a string", field.Type)
	}
	return field.Str, nil
}
