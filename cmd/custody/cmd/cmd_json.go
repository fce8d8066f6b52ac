package cmd

import (
	"encoding/json"
	"fmt"
)

func dumpJSON(o interface{}) error {
	js, err := json.MarshalIndent(o, "", "    ")
	if err != nil {
		return err
	}

	fmt.Printf("```\n%s\n```\n\n", js)

	return nil
}
