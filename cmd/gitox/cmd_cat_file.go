package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	var expected string
	var showType bool

	cmd := &cobra.Command{
		Use:   "cat-file <object>",
		Short: "Print the decoded contents of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var want object.ObjectType
			if expected != "" {
				t, err := object.ParseObjectType(expected)
				if err != nil {
					return err
				}
				want = t
			}

			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			h, err := r.ResolveOID(args[0])
			if err != nil {
				return err
			}

			obj, err := r.Store.Get(h, want)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if showType {
				fmt.Fprintln(out, obj.Type())
				return nil
			}
			return printObject(out, obj)
		},
	}

	cmd.Flags().StringVarP(&expected, "type", "t", "", "fail unless the object has this type (blob, tree, commit)")
	cmd.Flags().BoolVar(&showType, "show-type", false, "print the object type instead of its contents")

	return cmd
}

func printObject(out io.Writer, obj object.Object) error {
	switch o := obj.(type) {
	case *object.Blob:
		_, err := out.Write(o.Data)
		return err
	case *object.TreeObj:
		for _, e := range o.Entries {
			fmt.Fprintf(out, "%s %s %s\n", e.Type, e.Hash, e.Name)
		}
		return nil
	case *object.CommitObj:
		_, err := out.Write(object.MarshalCommit(o))
		if err == nil && len(o.Message) > 0 && o.Message[len(o.Message)-1] != '\n' {
			_, err = io.WriteString(out, "\n")
		}
		return err
	default:
		return fmt.Errorf("unsupported object %T", obj)
	}
}
