package entity

type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	ImageURL string  `json:"image_url"`
}

/*
Mysql Table

CREATE TABLE products (
	id INT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	price DOUBLE NOT NULL,
	category VARCHAR(50) NOT NULL,
	image_url VARCHAR(255) NOT NULL
);
*/
