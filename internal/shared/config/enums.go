//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package config

// AppEnv represents the application environment
// ENUM(local,production,development,testing)
type AppEnv string

// DatabaseDriver selects the GORM dialector
// ENUM(sqlite,mysql,postgres)
type DatabaseDriver string
