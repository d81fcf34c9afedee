package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func GenerateGiftID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("gift_%d_%06d", timestamp, randomNum.Int64())
}

func GenerateSessionID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	return fmt.Sprintf("sess_%d_%09d", timestamp, randomNum.Int64())
}
