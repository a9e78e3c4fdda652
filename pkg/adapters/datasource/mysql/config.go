package mysql

import "fmt"

// Config holds MySQL connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN builds the go-sql-driver connection string. parseTime makes the driver
// return time.Time for temporal columns instead of []byte.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.Database)
}
