package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"secureentry.com/secureentry/core"
	"secureentry.com/secureentry/infrastructure/filesystem"
)

// Operator tool: mint a credential for one employee and print the QR payload,
// for provisioning a badge without going through the HTTP API.
func main() {
	employeeID := flag.Uint("employee", 0, "employee id")
	email := flag.String("email", "", "employee email (alternative to -employee)")
	flag.Parse()

	if *employeeID == 0 && *email == "" {
		log.Fatal("usage: issuecredential -employee <id> | -email <address> (DSN from env)")
	}

	dsn := os.Getenv("DSN")
	if dsn == "" {
		log.Fatal("DSN not set")
	}

	db, err := core.Connect(dsn, 2, core.LogLevelSilent)
	if err != nil {
		log.Fatal(err)
	}

	id := *employeeID
	if id == 0 {
		emp, err := core.FindEmployeeByEmail(db, *email)
		if err != nil {
			log.Fatal(err)
		}
		if emp == nil {
			log.Fatalf("no employee with email %s", *email)
		}
		id = emp.EmployeeId
	}

	photos, err := filesystem.NewLocal(os.TempDir())
	if err != nil {
		log.Fatal(err)
	}

	engine := core.NewGateEngine(db, photos, nil, 0)
	credential, err := engine.IssueCredential(id)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(credential)
}
