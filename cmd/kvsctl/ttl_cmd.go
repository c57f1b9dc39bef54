package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var ttlCmd = &cobra.Command{
	Use:   "ttl",
	Short: "Manage TTL-expiring key-value stores",
}

func init() {
	ttlCmd.AddCommand(ttlPutCmd, ttlGetCmd, ttlListCmd)
	ttlPutCmd.Flags().String("ttl", "", "Expiration override, e.g. 30s (default: the store's configured default TTL)")
	ttlGetCmd.Flags().String("default", "", "Value returned if key is absent or expired")
}

var ttlPutCmd = &cobra.Command{
	Use:   "put <store> <key> <value>",
	Short: "Set a key with an optional TTL override",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openTtlEngine(cmd, args[0])
		if err != nil {
			return err
		}
		override, err := parseTTLFlag(cmd)
		if err != nil {
			return err
		}

		editor := engine.Edit()
		if override != nil {
			err = editor.PutStringWithTTL(args[1], args[2], *override)
		} else {
			err = editor.PutString(args[1], args[2])
		}
		if err != nil {
			return err
		}
		return editor.Commit(context.Background())
	},
}

var ttlGetCmd = &cobra.Command{
	Use:   "get <store> <key>",
	Short: "Print a key's current value, or --default if absent or expired",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openTtlEngine(cmd, args[0])
		if err != nil {
			return err
		}
		def, _ := cmd.Flags().GetString("default")
		v, err := engine.GetString(context.Background(), args[1], def)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var ttlListCmd = &cobra.Command{
	Use:   "list <store>",
	Short: "List every live (non-expired) key, removing expired entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openTtlEngine(cmd, args[0])
		if err != nil {
			return err
		}
		all, err := engine.GetAll(context.Background())
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s=%s\n", k, all[k])
		}
		return nil
	},
}
