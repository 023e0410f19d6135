package server

import (
	"encoding/json"
	"os"
)

type Config struct {
	Port        string `json:"port"`
	Ssl         bool   `json:"ssl"`
	SslCert     string `json:"sslCert"`
	SslKey      string `json:"sslKey"`
	WorkerSpeed int    `json:"workerSpeed"`
	WorkerQueue int    `json:"workerQueue"`
	FileLog     string `json:"fileLog"`
}

// ConfigLoad reads the process config from the json file given as the first
// argument, falling back to ./config.json and then to defaults.
func ConfigLoad() Config {
	config := Config{
		Port:        "8000",
		WorkerSpeed: 4,
		WorkerQueue: 100,
		FileLog:     "stakevault.log",
	}

	pathFile := "./config.json"
	if len(os.Args) > 1 {
		pathFile = os.Args[1]
	}

	configFile, err := os.Open(pathFile)
	if err == nil {
		defer configFile.Close()
		jsonParser := json.NewDecoder(configFile)
		jsonParser.Decode(&config)
	}

	SetLogger(config.FileLog)
	return config
}
