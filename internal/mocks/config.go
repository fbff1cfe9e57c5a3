package mocks

import "github.com/monibag/monibag/internal/config"

var MockConfig = config.Config{
	BaseURL:  "http://localhost:4444",
	HttpPort: 4444,
	Db: struct {
		Dsn         string
		Automigrate bool
	}{
		Dsn:         "user:pass@localhost:5432/db",
		Automigrate: false,
	},
	Jwt: struct {
		SecretKey string
	}{
		SecretKey: "hx6pk2ycmf4qwzrvn8eb3tdsg5l0aju9",
	},
	Notifications: struct {
		Email string
	}{
		Email: "",
	},
	Smtp: struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}{
		Host:     "localhost",
		Port:     25,
		Username: "username",
		Password: "password",
		From:     "Monibag <no_reply@monibag.example>",
	},
	PaymentProvider: struct {
		CheckoutURL string
	}{
		CheckoutURL: "https://checkout.payments.example/pay",
	},
	KafkaServers: "localhost:9092",
	RedisServer:  "localhost:6379",
}
