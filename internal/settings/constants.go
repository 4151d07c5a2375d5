// Package settings provides user notification preferences and their persistence.
package settings

import "os"

// File permission constants
const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--)
	FileModeFile os.FileMode = 0644

	// FileExtTOML is the file extension for TOML files.
	FileExtTOML = ".toml"
)

// Setting keys as they appear in patches and persisted documents.
const (
	KeyEnabled           = "enabled"
	KeyDesktopEnabled    = "desktop_enabled"
	KeyDesktopPermission = "desktop_permission"
	KeyQuietHours        = "quiet_hours"
)

// Keys of the quiet_hours table.
const (
	QuietKeyEnabled = "enabled"
	QuietKeyStart   = "start"
	QuietKeyEnd     = "end"
)

// Persisted desktop permission decisions.
const (
	PermissionUnrequested = "unrequested"
	PermissionGranted     = "granted"
	PermissionDenied      = "denied"
)

// Settings backends.
const (
	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
)

// clockLayout is the HH:MM layout used for quiet hours.
const clockLayout = "15:04"
