package main

import (
	"runtime/debug"
	"strings"
)

const shortRevisionLen = 7

var readBuildInfo = debug.ReadBuildInfo

// initVersion fills version and commit for binaries built without release
// ldflags. 'go install pkg@vX' builds carry a module version; builds from a
// checkout may only carry the VCS stamp and report dev-<revision>.
func initVersion() {
	if version != defaultVersion {
		return
	}

	info, ok := readBuildInfo()
	if !ok || info == nil {
		return
	}

	rev, dirty := vcsRevision(info)
	if rev != "" && commit == defaultCommit {
		commit = rev
	}

	switch v := info.Main.Version; {
	case v != "" && v != "(devel)":
		version = v
	case rev != "":
		version = defaultVersion + "-" + rev
		if dirty {
			version += "-dirty"
		}
	}
}

// vcsRevision returns the abbreviated commit the binary was built from and
// whether the tree had local modifications.
func vcsRevision(info *debug.BuildInfo) (rev string, dirty bool) {
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			rev = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if len(rev) > shortRevisionLen {
		rev = rev[:shortRevisionLen]
	}
	return rev, dirty
}

// versionString is what --version prints
func versionString() string {
	if commit == defaultCommit || strings.Contains(version, commit) {
		return version
	}
	return version + " (" + commit + ")"
}
