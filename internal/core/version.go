package core

import (
	"strings"

	version "github.com/hashicorp/go-version"
	debversion "github.com/knqyf263/go-deb-version"
)

// versionCache memoizes parsed versions. Installer versions are parsed as
// dotted semantic-style versions first; strings that grammar rejects (epochs,
// tildes) fall back to Debian ordering, which accepts most vendor schemes.
type versionCache struct {
	semver map[string]*version.Version
	deb    map[string]debversion.Version
}

func newVersionCache() *versionCache {
	return &versionCache{
		semver: map[string]*version.Version{},
		deb:    map[string]debversion.Version{},
	}
}

func (c *versionCache) semverVersion(value string) (*version.Version, error) {
	if parsed, ok := c.semver[value]; ok {
		return parsed, nil
	}
	parsed, err := version.NewVersion(value)
	if err != nil {
		return nil, err
	}
	c.semver[value] = parsed
	return parsed, nil
}

func (c *versionCache) debVersion(value string) (debversion.Version, error) {
	if parsed, ok := c.deb[value]; ok {
		return parsed, nil
	}
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		return debversion.Version{}, err
	}
	c.deb[value] = parsed
	return parsed, nil
}

// compare returns -1, 0 or 1 and whether the two versions were comparable
// at all.
func (c *versionCache) compare(a string, b string) (int, bool) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0, false
	}
	if a == b {
		return 0, true
	}
	v1, err1 := c.semverVersion(a)
	v2, err2 := c.semverVersion(b)
	if err1 == nil && err2 == nil {
		return v1.Compare(v2), true
	}
	d1, err := c.debVersion(a)
	if err != nil {
		return 0, false
	}
	d2, err := c.debVersion(b)
	if err != nil {
		return 0, false
	}
	return d1.Compare(d2), true
}

// CompareVersions compares two installer version strings. ok is false when
// either side is empty or unparseable.
func CompareVersions(a string, b string) (result int, ok bool) {
	return newVersionCache().compare(a, b)
}
