// Package view рендерит HTML-страницы сервера из встроенных шаблонов.
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

// Страницы (имена файлов без расширения).
const (
	PageHomepage     = "homepage"
	PageDataHomepage = "data_homepage"
	PageReport       = "report"
	PageHistory      = "history"
	PageRegister     = "register"
	PageLogin        = "login"
	PagePassword     = "password"
	PageApology      = "apology"
)

// Page — данные, общие для всех страниц, и данные конкретной страницы в Content.
type Page struct {
	Authenticated bool
	Content       any
}

// Apology — содержимое страницы ошибки.
type Apology struct {
	Message string
	Code    int
}

// Renderer держит распарсенные шаблоны: каждая страница — layout + свой файл.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// NewRenderer парсит все встроенные шаблоны.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(f), ".html")
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, layoutFile, f)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// ErrWrite — шаблон отработал и заголовок уже отправлен, ответ не дописан
// (обычно клиент закрыл соединение). Отвечать повторно нельзя.
var ErrWrite = errors.New("write response")

// Render выполняет шаблон страницы и пишет ответ с заданным статусом.
//
// Шаблон исполняется в буфер, поэтому при ошибке шаблона клиенту ничего
// не отправлено и вызывающий может сам ответить 500. Ошибка записи тела
// оборачивает ErrWrite.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
