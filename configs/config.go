package configs

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTLSecs  int
	UserId        string
	UserName      string
	UserPassword  string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var redisDB int
	if val := os.Getenv("REDIS_DB"); val != "" {
		_, err := fmt.Sscanf(val, "%d", &redisDB)
		if err != nil {
			log.Fatalf("Invalid REDIS_DB: %v", err)
		}
	}

	cacheTTL := 300
	if val := os.Getenv("CACHE_TTL_SECONDS"); val != "" {
		_, err := fmt.Sscanf(val, "%d", &cacheTTL)
		if err != nil {
			log.Fatalf("Invalid CACHE_TTL_SECONDS: %v", err)
		}
	}

	return Config{
		Port:          os.Getenv("PORT"),
		MongoURI:      os.Getenv("MONGO_URI"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		CacheTTLSecs:  cacheTTL,
		UserId:        os.Getenv("HARD_CODED_USER_ID"),
		UserName:      os.Getenv("HARD_CODED_USER_NAME"),
		UserPassword:  os.Getenv("HARD_CODED_USER_PASSWORD"),
	}
}
