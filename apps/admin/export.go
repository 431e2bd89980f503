package main

import (
	"context"
	"fmt"
	"os"
)

func (cli *commandLine) export(format, out string) error {
	data, err := cli.uniSvc.Export(context.Background(), format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), out)
	return nil
}
