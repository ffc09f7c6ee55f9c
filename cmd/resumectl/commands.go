package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

const (
	untitledTitle  = "Untitled Resume"
	generatedTitle = "AI Generated Resume"
)

func (a *cli) registerCmd() *cobra.Command {
	var in model.NewUser
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and start a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.api.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := a.saveToken(a.api.SessionToken()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "account password")
	cmd.Flags().StringVarP(&in.Name, "name", "n", "", "display name")
	return cmd
}

func (a *cli) loginCmd() *cobra.Command {
	var in model.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.api.Login(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := a.saveToken(a.api.SessionToken()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "account password")
	return cmd
}

func (a *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Logout(cmd.Context()); err != nil {
				return err
			}
			return a.saveToken("")
		},
	}
}

func (a *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.api.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
}

func (a *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your resumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.api.ListResumes(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range list {
				fmt.Fprintf(out, "%d\t%s\t%s\n", r.ID, r.Title, r.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func (a *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print one resume as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := a.api.GetResume(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func (a *cli) createCmd() *cobra.Command {
	var title, file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a resume from a content file, or an empty one named after you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.NewResume{Title: title}
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				content, err := schema.Decode[model.ResumeContent](schema.ResumeContent, raw)
				if err != nil {
					return err
				}
				in.Content = content
			} else {
				user, err := a.api.CurrentUser(cmd.Context())
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("not signed in")
				}
				in.Content.PersonalInfo.FullName = user.Name
			}
			res, err := a.api.CreateResume(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", untitledTitle, "resume title")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding the resume content")
	return cmd
}

func (a *cli) generateCmd() *cobra.Command {
	var (
		req   model.GenerationRequest
		level string
		save  bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate resume content for a role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ExperienceLevel = model.ExperienceLevel(level)
			content, err := a.api.GenerateResume(cmd.Context(), req)
			if err != nil {
				return err
			}
			if !save {
				return printJSON(cmd.OutOrStdout(), content)
			}
			res, err := a.api.CreateResume(cmd.Context(), model.NewResume{
				Title:         generatedTitle,
				Content:       content,
				IsAIGenerated: true,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&req.JobRole, "role", "r", "", "target job role")
	cmd.Flags().StringVarP(&level, "level", "l", string(model.LevelFresher), "Fresher or Experienced")
	cmd.Flags().StringVar(&req.Skills, "skills", "", "comma separated skills")
	cmd.Flags().StringVar(&req.CurrentEducation, "education", "", "current education")
	cmd.Flags().StringVar(&req.ProjectsContext, "projects", "", "projects to mention")
	cmd.Flags().BoolVar(&save, "save", false, "store the result as a new resume")
	return cmd
}

func (a *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.api.DeleteResume(cmd.Context(), id)
		},
	}
}

func (a *cli) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Download a resume as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := a.api.ExportResume(cmd.Context(), id)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = doc.FileName
			}
			if path == "" {
				path = "resume.pdf"
			}
			if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (defaults to the server's file name)")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid resume id %q", raw)
	}
	return id, nil
}
