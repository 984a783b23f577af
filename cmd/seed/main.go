// Command seed fills the database with demo portfolio content.
package main

import (
	"flag"
	"fmt"
	"log"

	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/seed"
)

func main() {
	posts := flag.Int("posts", 8, "number of posts to create")
	projects := flag.Int("projects", 4, "number of projects to create")
	experiences := flag.Int("experiences", 3, "number of experiences to create")
	clean := flag.Bool("clean", false, "remove existing content first")
	flag.Parse()

	if err := run(*posts, *projects, *experiences, *clean); err != nil {
		log.Fatal(err)
	}
}

func run(posts, projects, experiences int, clean bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	return seed.Run(db, seed.Options{
		NumPosts:       posts,
		NumProjects:    projects,
		NumExperiences: experiences,
		ShouldClean:    clean,
	})
}
