package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
)

func (cli *commandLine) listModules(ctx context.Context, args []string) error {
	cmd := cli.flagSet("modules")
	search := cmd.String("search", "", "Only list modules whose title contains this text.")
	mine := cmd.Bool("mine", false, "Only list the modules you published.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}

	filter := module.QueryFilter{Search: *search}
	if *mine {
		id, err := core.RequireRole(ctx, core.RoleTeacher)
		if err != nil {
			return err
		}
		filter.TeacherID = id.UserID
	}
	mods, err := cli.modules.Query(ctx, filter)
	if err != nil {
		return err
	}
	if len(mods) == 0 {
		cli.printf("No modules found.\n")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	cli.fprintf(w, "ID\tTITLE\tCONTENT\tCREATED\n")
	for _, mod := range mods {
		cli.fprintf(w, "%s\t%s\t%s\t%s\n", mod.ID, mod.Title, mod.ContentKind(), mod.CreatedAt.Local().Format("2006-01-02"))
	}
	return w.Flush()
}

func (cli *commandLine) module(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printf("Usage: module add|edit|rm|export [OPTIONS]\n")
		return errHelp
	}

	switch args[0] {
	case "add":
		return cli.addModule(ctx, args[1:])
	case "edit":
		return cli.editModule(ctx, args[1:])
	case "rm":
		return cli.removeModule(ctx, args[1:])
	case "export":
		return cli.exportModule(ctx, args[1:])
	default:
		cli.printf("Usage: module add|edit|rm|export [OPTIONS]\n")
		return errHelp
	}
}

func (cli *commandLine) addModule(ctx context.Context, args []string) error {
	cmd := cli.flagSet("module add")
	title := cmd.String("title", "", "Module title. Defaults to the name of -file.")
	desc := cmd.String("description", "", "Short description.")
	content := cmd.String("content", "", "Module content.")
	file := cmd.String("file", "", "Read the content from this file.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}

	nm := module.NewModule{Title: *title, Description: *desc, Content: *content}
	if *file != "" {
		text, err := readContentFile(*file)
		if err != nil {
			return err
		}
		nm.Content = text
		if nm.Title == "" {
			nm.Title = module.TitleFromFilename(filepath.Base(*file))
		}
	}

	mod, err := cli.modules.Create(ctx, nm)
	if err != nil {
		return err
	}
	cli.printf("Published %q (%s)\n", mod.Title, mod.ID)
	return nil
}

func (cli *commandLine) editModule(ctx context.Context, args []string) error {
	cmd := cli.flagSet("module edit")
	id := cmd.String("id", "", "Module ID.")
	title := cmd.String("title", "", "New title.")
	desc := cmd.String("description", "", "New description.")
	content := cmd.String("content", "", "New content.")
	file := cmd.String("file", "", "Read the new content from this file.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *id == "" {
		cmd.Usage()
		return errHelp
	}

	var um module.UpdateModule
	cmd.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			um.Title = title
		case "description":
			um.Description = desc
		case "content":
			um.Content = content
		}
	})
	if *file != "" {
		text, err := readContentFile(*file)
		if err != nil {
			return err
		}
		um.Content = &text
	}

	mod, err := cli.modules.Update(ctx, *id, um)
	if err != nil {
		return err
	}
	cli.printf("Updated %q\n", mod.Title)
	return nil
}

func (cli *commandLine) removeModule(ctx context.Context, args []string) error {
	cmd := cli.flagSet("module rm")
	id := cmd.String("id", "", "Module ID.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *id == "" {
		cmd.Usage()
		return errHelp
	}
	if err := cli.modules.Delete(ctx, *id); err != nil {
		return err
	}
	cli.printf("Deleted module %s\n", *id)
	return nil
}

func (cli *commandLine) exportModule(ctx context.Context, args []string) error {
	cmd := cli.flagSet("module export")
	id := cmd.String("id", "", "Module ID.")
	dir := cmd.String("dir", ".", "Directory to write the export to.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *id == "" {
		cmd.Usage()
		return errHelp
	}

	name, text, err := cli.modules.Export(ctx, *id)
	if err != nil {
		return err
	}
	path := filepath.Join(*dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.Wrap(err, "writing export")
	}
	cli.printf("Exported to %s\n", path)
	return nil
}

func readContentFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "reading content file")
	}
	return module.CleanExtractedMarkup(string(data)), nil
}
