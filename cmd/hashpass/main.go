// Command hashpass prints a bcrypt hash for ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashpass 'my admin password'
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/auth"
)

func main() {
	password := strings.Join(os.Args[1:], " ")
	if password == "" {
		fmt.Fprint(os.Stderr, "password: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		password = strings.TrimRight(line, "\r\n")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
