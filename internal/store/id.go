package store

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idMaxAttempts = 20

// GenerateID returns a new random todo id.
// It retries on collisions using the provided exists function.
func GenerateID(exists func(string) (bool, error)) (string, error) {
	for i := 0; i < idMaxAttempts; i++ {
		id, err := gonanoid.New()
		if err != nil {
			return "", err
		}
		if exists == nil {
			return id, nil
		}
		ok, err := exists(id)
		if err != nil {
			return "", err
		}
		if !ok {
			return id, nil
		}
	}

	return "", fmt.Errorf("unable to generate unique id")
}
