package firestoredb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// serviceAccount holds the fields of a service-account key file we check before handing it to the SDK.
type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// loadCredential reads and sanity-checks a service-account key file.
func loadCredential(path string) ([]byte, serviceAccount, error) {
	var sa serviceAccount
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sa, err
	}
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, sa, fmt.Errorf("parse credential %s: %w", path, err)
	}
	if sa.Type != "service_account" {
		return nil, sa, fmt.Errorf("credential %s: type is %q, expected \"service_account\"", path, sa.Type)
	}
	if sa.ProjectID == "" {
		return nil, sa, errors.New("credential " + path + ": missing project_id")
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, sa, errors.New("credential " + path + ": missing client_email or private_key")
	}
	return data, sa, nil
}
