package constants

const (
	// Selection state keys in the settings table
	SettingSelectedActivity = "selectedActivity"
	SettingRerollsLeft      = "rerollsLeft"
	SettingLastRollDate     = "lastRollDate"
	SettingIsLockedIn       = "isLockedIn"

	// Default Settings Values
	DefaultMaxRerolls   = 2
	DefaultHistoryLimit = 10
)

// SelectionKeys lists every key owned by the selection state, in save order.
var SelectionKeys = []string{
	SettingSelectedActivity,
	SettingRerollsLeft,
	SettingLastRollDate,
	SettingIsLockedIn,
}
