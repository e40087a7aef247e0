package constants

import "time"

const (
	AppName            = "habitlit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitlit/habitlit.db"
	DefaultUserID      = "local"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitlit-"
	BackupFileSuffix = ".db"

	// StreakLookbackDays is the size of one page of completion history read
	// while walking a streak backwards.
	StreakLookbackDays = 30

	// SuccessPercentage is the completion percentage at which a day counts.
	SuccessPercentage = 100

	// ComebackMinBrokenStreak is the shortest broken streak whose resumption
	// counts as a comeback.
	ComebackMinBrokenStreak = 3

	// XP defaults, overridable through config
	DefaultXPPerCompletion  = 10
	DefaultStreakBonusXP    = 25
	DefaultStreakBonusEvery = 7
	DefaultDailyXPCap       = 200

	// HTTP / cache defaults
	DefaultHTTPAddr  = ":8080"
	DefaultCacheTTL  = 10 * time.Minute
	DefaultTimezone  = "Local"
	SettingTimezone  = "timezone"
	EnvDBConnection  = "HABITLIT_DB_CONNECTION"
	EnvPrefix        = "HABITLIT"
	ConfigFileName   = "config"
	LogFileName      = "habitlit.log"
	StatsCachePrefix = "habitlit:stats"
	MonthLabelFormat = "2006-01"
	AutoDayMaxDays   = 31
	AutoWeekMaxDays  = 180

	// MaxStatsRangeDays bounds one aggregation. Roughly ten years.
	MaxStatsRangeDays = 3660

	// EarliestDate is the first calendar day the store can hold.
	EarliestDate = "0001-01-01"
)
