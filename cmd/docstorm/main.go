// Command docstorm is a terminal client for the DocStorm API. It drives the
// same view-state layer the web dashboard uses: login, the auth gate, the
// filtered catalog with client-side pagination and the favorite toggle.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/devstorm/docstorm-api/pkg/browse"
	"github.com/devstorm/docstorm-api/pkg/client"
)

func main() {
	baseURL := os.Getenv("DOCSTORM_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	api, err := client.New(baseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "client:", err)
		os.Exit(1)
	}

	app := &console{
		api:        api,
		gate:       browse.NewGate(api),
		controller: browse.NewController(api),
	}
	app.list = browse.NewCourseList(api, func(err error) {
		fmt.Println("favori non enregistré:", err)
	})

	fmt.Println("DocStorm -", baseURL)
	fmt.Println("commands: login | list | search | page | fav | detail | review | logout | help | quit")

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		args := strings.Fields(in.Text())
		if len(args) == 0 {
			continue
		}
		cmd, args := args[0], args[1:]

		switch cmd {
		case "quit", "q":
			return
		case "help":
			fmt.Println("login <email> <password>")
			fmt.Println("list                       show the current page")
			fmt.Println("search [text] [domaine] [type] [niveau]   empty args clear the filters")
			fmt.Println("page <n>")
			fmt.Println("fav <id_cours>")
			fmt.Println("detail <id_cours>")
			fmt.Println("review <id_cours> <note 1..5> [commentaire]")
			fmt.Println("logout")
		case "login":
			app.login(args)
		case "list":
			app.show()
		case "search":
			app.search(args)
		case "page":
			app.page(args)
		case "fav":
			app.favorite(args)
		case "detail":
			app.detail(args)
		case "review":
			app.review(args)
		case "logout":
			app.logout()
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

type console struct {
	api        *client.Client
	gate       *browse.Gate
	controller *browse.Controller
	list       *browse.CourseList
}

// ensureSession runs the auth gate before any data command.
func (a *console) ensureSession(ctx context.Context) bool {
	outcome, err := a.gate.Check(ctx, false)
	if err != nil {
		fmt.Println("session check failed:", err)
		return false
	}
	if outcome != browse.Proceed {
		fmt.Println("non connecté, utilisez: login <email> <password>")
		return false
	}
	return true
}

func (a *console) login(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <email> <password>")
		return
	}
	ctx := context.Background()
	res, err := a.api.Login(ctx, args[0], args[1])
	if err != nil {
		fmt.Println(errMessage(err))
		return
	}
	fmt.Println(res.Message)

	a.controller.Load(ctx)
	a.syncList(ctx)
	a.show()
}

func (a *console) logout() {
	if err := a.api.Logout(context.Background()); err != nil {
		fmt.Println(errMessage(err))
		return
	}
	fmt.Println("Déconnexion réussie")
}

func (a *console) search(args []string) {
	ctx := context.Background()
	if !a.ensureSession(ctx) {
		return
	}
	var f client.Filters
	if len(args) > 0 {
		f.Search = args[0]
	}
	if len(args) > 1 {
		f.Domain = args[1]
	}
	if len(args) > 2 {
		f.ResourceType = args[2]
	}
	if len(args) > 3 {
		f.Level = args[3]
	}
	a.controller.SetFilters(ctx, f)
	a.syncList(ctx)
	a.show()
}

func (a *console) page(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: page <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("usage: page <n>")
		return
	}
	a.controller.SetPage(n)
	a.show()
}

func (a *console) favorite(args []string) {
	id, ok := courseID(args, "fav")
	if !ok {
		return
	}
	ctx := context.Background()
	if !a.ensureSession(ctx) {
		return
	}
	a.list.Toggle(ctx, id)
	if a.list.IsFavorite(id) {
		fmt.Println("Cours ajouté aux favoris")
	} else {
		fmt.Println("Cours retiré des favoris")
	}
}

func (a *console) detail(args []string) {
	id, ok := courseID(args, "detail")
	if !ok {
		return
	}
	ctx := context.Background()
	if !a.ensureSession(ctx) {
		return
	}
	d, err := a.api.CourseDetail(ctx, id)
	if err != nil {
		fmt.Println(errMessage(err))
		return
	}
	c := d.Course
	fmt.Printf("%s (%s, %s, %s, %s)\n", c.Name, c.Domain, c.ResourceType, c.Level, c.Language)
	fmt.Printf("vues: %d  favori: %v\n", c.ViewCount, d.IsFavorite)
	for _, r := range d.Reviews {
		fmt.Printf("  %d/5 - %s %s: %s\n", r.Note, r.AuthorFirstName, r.AuthorLastName, r.Comment)
	}
}

func (a *console) review(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: review <id_cours> <note 1..5> [commentaire]")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Println("identifiant de cours invalide")
		return
	}
	note, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("usage: review <id_cours> <note 1..5> [commentaire]")
		return
	}
	ctx := context.Background()
	if !a.ensureSession(ctx) {
		return
	}
	comment := strings.Join(args[2:], " ")
	if err := a.api.SubmitReview(ctx, id, note, comment); err != nil {
		fmt.Println(errMessage(err))
		return
	}
	fmt.Println("Avis enregistré")
}

// syncList pulls the current snapshot into the course list and marks the
// favorites from the dashboard.
func (a *console) syncList(ctx context.Context) {
	snap := a.controller.Snapshot()
	a.list.SetCourses(snap.Courses)
	if dash, err := a.api.Dashboard(ctx); err == nil {
		a.list.MarkFavorites(dash.Favorites)
	}
}

func (a *console) show() {
	snap := a.controller.Snapshot()
	a.list.SetCourses(snap.Courses)
	if snap.Err != nil {
		fmt.Println("dernier chargement en erreur:", errMessage(snap.Err))
	}
	if snap.Total == 0 {
		fmt.Println("aucun cours")
		return
	}
	for _, c := range a.list.Courses() {
		star := " "
		if a.list.IsFavorite(c.ID) {
			star = "*"
		}
		fmt.Printf("%s %4d  %-40s %-15s %s\n", star, c.ID, c.Name, c.Domain, c.Level)
	}
	fmt.Printf("page %d/%d (%d cours)\n", snap.Page, snap.TotalPages, snap.Total)
}

func courseID(args []string, cmd string) (int64, bool) {
	if len(args) != 1 {
		fmt.Printf("usage: %s <id_cours>\n", cmd)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Println("identifiant de cours invalide")
		return 0, false
	}
	return id, true
}

// errMessage prefers the backend's French message when one is present.
func errMessage(err error) string {
	if apiErr, ok := err.(*client.APIError); ok {
		if len(apiErr.Fields) > 0 {
			parts := make([]string, 0, len(apiErr.Fields))
			for field, msg := range apiErr.Fields {
				parts = append(parts, field+": "+msg)
			}
			return strings.Join(parts, "; ")
		}
		return apiErr.Message
	}
	return err.Error()
}
