package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage single-object document stores",
}

func init() {
	docCmd.AddCommand(docReadCmd, docWriteCmd)
}

var docReadCmd = &cobra.Command{
	Use:   "read <store>",
	Short: "Print a document store's current text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDocumentStore(cmd, args[0])
		if err != nil {
			return err
		}
		text, err := store.Read(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var docWriteCmd = &cobra.Command{
	Use:   "write <store> <text>",
	Short: "Replace a document store's entire text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDocumentStore(cmd, args[0])
		if err != nil {
			return err
		}
		return store.Write(context.Background(), args[1])
	},
}
