package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/the-notes/internal/model"
	"github.com/debemdeboas/the-notes/internal/notes"
)

func newListCmd(c *cli) *cobra.Command {
	var (
		search string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, release, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if search != "" {
				if err := ctrl.SetSearchText(cmd.Context(), search); err != nil {
					return err
				}
			}

			list := ctrl.State().Notes
			if asJSON {
				encoder := json.NewEncoder(c.out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(list)
			}
			printList(c.out, list)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only list notes whose title contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, release, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			note, err := selectNote(ctrl, args[0])
			if err != nil {
				return err
			}
			printNote(c.out, note)
			return nil
		},
	}
}

// noteFields are the flags shared by add and edit.
type noteFields struct {
	title   string
	content string
	file    string
}

func (f *noteFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&f.content, "content", "c", "", "Note content")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", `Read the content from a file ("-" for stdin)`)
	cmd.MarkFlagsMutuallyExclusive("content", "file")
}

// apply writes the flags that were given into the controller draft.
func (f *noteFields) apply(cmd *cobra.Command, c *cli, ctrl *notes.Controller) error {
	if cmd.Flags().Changed("title") {
		if err := ctrl.UpdateDraftField(model.FieldTitle, f.title); err != nil {
			return err
		}
	}

	content, ok, err := f.readContent(cmd, c)
	if err != nil {
		return err
	}
	if ok {
		return ctrl.UpdateDraftField(model.FieldContent, content)
	}
	return nil
}

func (f *noteFields) readContent(cmd *cobra.Command, c *cli) (string, bool, error) {
	switch {
	case cmd.Flags().Changed("content"):
		return f.content, true, nil
	case f.file == "-":
		data, err := io.ReadAll(c.in)
		return string(data), err == nil, err
	case f.file != "":
		data, err := os.ReadFile(f.file)
		return string(data), err == nil, err
	}
	return "", false, nil
}

func newAddCmd(c *cli) *cobra.Command {
	var fields noteFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, release, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			ctrl.StartNew()
			if err := fields.apply(cmd, c, ctrl); err != nil {
				return err
			}
			if err := ctrl.Save(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(c.out, "%s %s\n", okStyle.Render("Note created:"), ctrl.State().SelectedID)
			return nil
		},
	}
	fields.register(cmd)
	cmd.MarkFlagRequired("title")
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var fields noteFields

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change the title or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, release, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if _, err := selectNote(ctrl, args[0]); err != nil {
				return err
			}
			ctrl.StartEdit()
			if err := fields.apply(cmd, c, ctrl); err != nil {
				return err
			}
			if err := ctrl.Save(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(c.out, "%s %s\n", okStyle.Render("Note updated:"), args[0])
			return nil
		},
	}
	fields.register(cmd)
	cmd.MarkFlagsOneRequired("title", "content", "file")
	return cmd
}

func newRmCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, release, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if _, err := selectNote(ctrl, args[0]); err != nil {
				return err
			}

			confirm := func(prompt string) bool {
				if yes {
					return true
				}
				return askYesNo(c.in, c.out, prompt)
			}
			err = ctrl.Delete(cmd.Context(), confirm)
			if errors.Is(err, notes.ErrNotConfirmed) {
				fmt.Fprintln(c.out, dimStyle.Render("Nothing deleted."))
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "%s %s\n", okStyle.Render("Note deleted:"), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func selectNote(ctrl *notes.Controller, id string) (model.Note, error) {
	if err := ctrl.SelectNote(model.NoteID(id)); err != nil {
		if errors.Is(err, notes.ErrUnknownNote) {
			return model.Note{}, fmt.Errorf("no note with id %q", id)
		}
		return model.Note{}, err
	}
	note, _ := ctrl.State().Selected()
	return note, nil
}

// askYesNo defaults to no on anything but an explicit yes, including EOF.
func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, promptStyle.Render(prompt+" [y/N] "))
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
