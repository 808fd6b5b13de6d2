package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mealhub-dev/mealhub/internal/mockapi"
	"github.com/mealhub-dev/mealhub/internal/models"
)

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	seed := flag.Bool("seed", true, "seed demo accounts and meals")
	flag.Parse()

	srv := mockapi.New()
	if *seed {
		srv.SeedAccount("admin@mealhub.test", "admin123", "Admin", models.RoleAdmin)
		srv.SeedAccount("chef@mealhub.test", "chef123", "Chef Dana", models.RoleChef)
		srv.SeedAccount("user@mealhub.test", "user123", "Sam", models.RoleUser)
		srv.SeedMeal("chef@mealhub.test", "Beef Rendang", "dinner", 12.50)
		srv.SeedMeal("chef@mealhub.test", "Nasi Goreng", "lunch", 8.00)
		fmt.Println("Seeded demo accounts (admin@mealhub.test/admin123, chef@mealhub.test/chef123, user@mealhub.test/user123)")
	}

	fmt.Printf("Mock MealHub backend listening on %s\n", *addr)
	if err := srv.Run(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
