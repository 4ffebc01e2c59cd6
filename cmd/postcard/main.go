// Command postcard runs the postcard conversation in a terminal and writes
// the finished postcards to the output directory.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/disintegration/imaging"

	"github.com/youruser/postcardapp/internal/assets"
	"github.com/youruser/postcardapp/internal/catalog"
	"github.com/youruser/postcardapp/internal/config"
	imagepkg "github.com/youruser/postcardapp/internal/image"
	"github.com/youruser/postcardapp/internal/postcard"
	"github.com/youruser/postcardapp/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	previewOut := flag.String("previews", "previews.png", "where to write the template preview sheet")
	flag.Parse()

	if err := run(*configPath, *previewOut); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "postcard:", err)
		os.Exit(1)
	}
}

func run(configPath, previewOut string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := cfg.Logger()

	cat, err := catalog.LoadFromDir(cfg.AssetsDir)
	if err != nil {
		return err
	}
	var store assets.Store = assets.NewDirStore(cfg.AssetsDir)
	if cfg.AssetsURL != "" {
		store = &assets.HTTPStore{BaseURL: cfg.AssetsURL}
	}
	renderer := imagepkg.NewRenderer(store, imagepkg.WithLogger(log), imagepkg.WithFontDirs(cfg.FontDirs...))
	postcards, err := postcard.NewStore(cfg.OutputDir)
	if err != nil {
		return err
	}

	conv := session.NewConversation(cat)
	s := session.New("terminal", os.Getenv("USER"))
	var text string
	for {
		out, err := conv.Handle(s, text)
		if err != nil {
			return err
		}
		for _, r := range out.Replies {
			fmt.Println(r.Text)
			if r.ShowPreviews {
				if err := writePreviews(renderer, cat, previewOut); err != nil {
					log.Warn("could not write previews", "err", err)
				} else {
					fmt.Println("Template previews:", previewOut)
				}
			}
		}

		if out.Render != nil {
			if err := deliver(renderer, postcards, cat, out.Render); err != nil {
				return err
			}
			conv.Finish(s)
			again := false
			if err := survey.AskOne(&survey.Confirm{Message: "Make another postcard?", Default: true}, &again); err != nil {
				return err
			}
			if !again {
				return nil
			}
			fmt.Println("Send me a template number.")
		}

		if text, err = ask(s, cat); err != nil {
			return err
		}
	}
}

// ask reads the next message. Template choices are offered as a list.
func ask(s *session.Session, cat *catalog.Catalog) (string, error) {
	var out string
	if s.State == session.StateChoosingTemplate {
		var options []string
		for _, idx := range cat.Indices() {
			options = append(options, "#"+strconv.Itoa(idx))
		}
		err := survey.AskOne(&survey.Select{Message: "Template:", Options: options}, &out)
		return out, err
	}
	err := survey.AskOne(&survey.Input{Message: ">"}, &out)
	return out, err
}

func deliver(r *imagepkg.Renderer, postcards *postcard.Store, cat *catalog.Catalog, req *session.RenderRequest) error {
	tpl, ok := cat.Template(req.Template)
	if !ok {
		return fmt.Errorf("template %d not found", req.Template)
	}
	res, err := r.Render(tpl, req.Texts)
	if err != nil {
		return err
	}
	p := &postcard.Postcard{Template: tpl.Index, Texts: req.Texts}
	for _, w := range res.Warnings {
		p.Warnings = append(p.Warnings, w.Error())
	}
	if err := postcards.Save(p, res.Image); err != nil {
		return err
	}
	path, err := postcards.ImagePath(p.ID)
	if err != nil {
		return err
	}
	fmt.Println("Your postcard is ready:", path)
	fmt.Println(postcard.ExportText(*p))
	return nil
}

func writePreviews(r *imagepkg.Renderer, cat *catalog.Catalog, path string) error {
	sheet, err := r.PreviewSheet(cat)
	if err != nil {
		return err
	}
	return imaging.Save(sheet, path)
}
