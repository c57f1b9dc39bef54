package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var prefCmd = &cobra.Command{
	Use:   "pref",
	Short: "Manage typed scalar preference stores",
}

func init() {
	prefCmd.AddCommand(prefGetCmd, prefPutCmd, prefRmCmd, prefClearCmd, prefListCmd)

	prefGetCmd.Flags().String("type", "string", "Value type: string, int32, int64, float32, bool")
	prefGetCmd.Flags().String("default", "", "Value returned if key is absent or does not parse as --type")

	prefPutCmd.Flags().String("type", "string", "Value type: string, int32, int64, float32, bool")
}

var prefGetCmd = &cobra.Command{
	Use:   "get <store> <key>",
	Short: "Print a preference key's current value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPreferenceStore(cmd, args[0])
		if err != nil {
			return err
		}
		ctx := context.Background()
		kind, _ := cmd.Flags().GetString("type")
		def, _ := cmd.Flags().GetString("default")

		switch kind {
		case "string":
			v, err := store.GetString(ctx, args[1], def)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "int32":
			defVal, _ := strconv.ParseInt(def, 10, 32)
			v, err := store.GetInt32(ctx, args[1], int32(defVal))
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "int64":
			defVal, _ := strconv.ParseInt(def, 10, 64)
			v, err := store.GetInt64(ctx, args[1], defVal)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "float32":
			defVal, _ := strconv.ParseFloat(def, 32)
			v, err := store.GetFloat32(ctx, args[1], float32(defVal))
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "bool":
			defVal, _ := strconv.ParseBool(def)
			v, err := store.GetBool(ctx, args[1], defVal)
			if err != nil {
				return err
			}
			fmt.Println(v)
		default:
			return fmt.Errorf("unknown --type %q", kind)
		}
		return nil
	},
}

var prefPutCmd = &cobra.Command{
	Use:   "put <store> <key> <value>",
	Short: "Set a preference key",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPreferenceStore(cmd, args[0])
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("type")

		editor := store.Edit()
		switch kind {
		case "string":
			err = editor.PutString(args[1], args[2])
		case "int32":
			n, perr := strconv.ParseInt(args[2], 10, 32)
			if perr != nil {
				return fmt.Errorf("invalid int32 value %q: %w", args[2], perr)
			}
			err = editor.PutInt32(args[1], int32(n))
		case "int64":
			n, perr := strconv.ParseInt(args[2], 10, 64)
			if perr != nil {
				return fmt.Errorf("invalid int64 value %q: %w", args[2], perr)
			}
			err = editor.PutInt64(args[1], n)
		case "float32":
			n, perr := strconv.ParseFloat(args[2], 32)
			if perr != nil {
				return fmt.Errorf("invalid float32 value %q: %w", args[2], perr)
			}
			err = editor.PutFloat32(args[1], float32(n))
		case "bool":
			b, perr := strconv.ParseBool(args[2])
			if perr != nil {
				return fmt.Errorf("invalid bool value %q: %w", args[2], perr)
			}
			err = editor.PutBool(args[1], b)
		default:
			return fmt.Errorf("unknown --type %q", kind)
		}
		if err != nil {
			return err
		}
		return editor.Commit(context.Background())
	},
}

var prefRmCmd = &cobra.Command{
	Use:   "rm <store> <key>",
	Short: "Remove a preference key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPreferenceStore(cmd, args[0])
		if err != nil {
			return err
		}
		editor := store.Edit()
		if err := editor.Remove(args[1]); err != nil {
			return err
		}
		return editor.Commit(context.Background())
	},
}

var prefClearCmd = &cobra.Command{
	Use:   "clear <store>",
	Short: "Remove every key in a preference store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPreferenceStore(cmd, args[0])
		if err != nil {
			return err
		}
		editor := store.Edit()
		if err := editor.Clear(); err != nil {
			return err
		}
		return editor.Commit(context.Background())
	},
}

var prefListCmd = &cobra.Command{
	Use:   "list <store>",
	Short: "List every key in a preference store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPreferenceStore(cmd, args[0])
		if err != nil {
			return err
		}
		all, err := store.GetAll(context.Background())
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
