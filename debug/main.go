package main

import (
	"os"

	"github.com/emrgen/cadeia/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Setenv("INSECURE", "true")
	os.Setenv("LOG_LEVEL", "debug")

	if err := server.Start(os.Getenv("HTTP_PORT")); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}
