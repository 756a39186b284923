package migrations

import (
	"database/sql"
	"time"
)

// AutoMigrateProducts creates the products table if it does not exist.
func AutoMigrateProducts(retries int, dbs ...*sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS products (
			id INT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			price DOUBLE NOT NULL,
			category VARCHAR(50) NOT NULL,
			image_url VARCHAR(255) NOT NULL
		);
	`
	return execWithRetry(query, retries, dbs...)
}

// AutoMigrateUsers creates the users table if it does not exist.
func AutoMigrateUsers(retries int, dbs ...*sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL
		);
	`
	return execWithRetry(query, retries, dbs...)
}

func execWithRetry(query string, retries int, dbs ...*sql.DB) error {
	for _, db := range dbs {
		_, err := db.Exec(query)
		if err != nil {
			// Retry creating the table
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = db.Exec(query)
				if err == nil {
					break
				}
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
