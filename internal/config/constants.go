package config

const AppName = "pagebuilder"
const ConfigDirName = "pagebuilder"
const DefaultConfigFileName = "config.toml"
const DefaultJournalFileName = "journal.db"

// Editor defaults
const DefaultMaxHistory = 0 // unbounded

// Journal pruning defaults
const DefaultPruneSchedule = "@daily"
const DefaultPruneMaxSteps = 40
const DefaultPruneAfter = "168h"
