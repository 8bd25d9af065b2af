package main

import (
	"fmt"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// Generates the bcrypt hash for ADMIN_PASSWORD_HASH.
func main() {
	fmt.Println("=== Operator Password Hash ===")

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()

	password := string(bytePassword)
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	fmt.Print("Confirm Password: ")
	byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()

	if password != string(byteConfirm) {
		fmt.Println("Error: Passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("\nSet this in your environment:")
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", string(hash))
}
