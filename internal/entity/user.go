package entity

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

/*
Mysql Table

CREATE TABLE users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(50) NOT NULL,
	password_hash VARCHAR(255) NOT NULL
);

CREATE UNIQUE INDEX username_idx ON users(username);
*/
