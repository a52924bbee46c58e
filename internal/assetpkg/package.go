package assetpkg

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Entry 表示一条解析结果：URI 路径与对应的本地文件。
type Entry struct {
	Path string `json:"path"`
	File string `json:"file"`
}

// IgnoreFunc 由调用方注入，返回 true 时对应路径会被剔除。
type IgnoreFunc func(path string) bool

// Options 聚合构造 Package 所需的全部字段。
type Options struct {
	Name       string
	Type       Type
	OutputPath string
	Filespecs  []string
	AssetRoot  string
	Ignore     IgnoreFunc
}

// Package 是一个具名的资源包：按 filespec 顺序聚合源文件，产出单一逻辑输出路径。
type Package struct {
	name       string
	typ        Type
	outputPath string
	filespecs  []string
	assetRoot  string
	ignore     IgnoreFunc
}

// New 校验并构造 Package。filespec 为空是合法的（空包）。
func New(opts Options) (*Package, error) {
	if opts.Name == "" {
		return nil, errors.New("package name required")
	}
	if !opts.Type.Valid() {
		return nil, fmt.Errorf("unsupported asset type: %s", opts.Type)
	}
	if !strings.HasPrefix(opts.OutputPath, "/") || path.Ext(opts.OutputPath) == "" {
		return nil, fmt.Errorf("invalid output path: %s", opts.OutputPath)
	}
	if opts.AssetRoot == "" {
		return nil, errors.New("asset root required")
	}

	return &Package{
		name:       opts.Name,
		typ:        opts.Type,
		outputPath: opts.OutputPath,
		filespecs:  append([]string(nil), opts.Filespecs...),
		assetRoot:  opts.AssetRoot,
		ignore:     opts.Ignore,
	}, nil
}

// Name 返回包名。
func (p *Package) Name() string { return p.name }

// Type 返回资产类型。
func (p *Package) Type() Type { return p.typ }

// OutputPath 返回未加 buster 的逻辑输出路径。
func (p *Package) OutputPath() string { return p.outputPath }

// Filespecs 返回 filespec 副本，保持声明顺序。
func (p *Package) Filespecs() []string {
	return append([]string(nil), p.filespecs...)
}

// AssetRoot 返回 glob 展开的根目录。
func (p *Package) AssetRoot() string { return p.assetRoot }

// IsJS 与 IsCSS 互斥且覆盖两种受支持类型。
func (p *Package) IsJS() bool { return p.typ == TypeJS }

// IsCSS 见 IsJS。
func (p *Package) IsCSS() bool { return p.typ == TypeCSS }

// Resolve 按 filespec 顺序展开 glob，剔除 ignore 命中的路径，
// 跨 filespec 的重复文件仅保留首次出现。零匹配返回空切片而非错误。
func (p *Package) Resolve() ([]Entry, error) {
	root := filepath.ToSlash(p.assetRoot)
	seen := make(map[string]struct{})
	var entries []Entry

	for _, spec := range p.filespecs {
		pattern := path.Join(root, spec)
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expand filespec %s: %w", spec, err)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", match, err)
			}
			if info.IsDir() {
				continue
			}

			rel, err := filepath.Rel(p.assetRoot, match)
			if err != nil {
				return nil, fmt.Errorf("relativize %s: %w", match, err)
			}
			uriPath := "/" + filepath.ToSlash(rel)

			if _, dup := seen[uriPath]; dup {
				continue
			}
			if p.ignore != nil && p.ignore(uriPath) {
				continue
			}
			seen[uriPath] = struct{}{}
			entries = append(entries, Entry{Path: uriPath, File: match})
		}
	}

	return entries, nil
}

// Paths 返回解析后的 URI 路径列表。
func (p *Package) Paths() ([]string, error) {
	entries, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
	}
	return paths, nil
}

// Files 返回解析后的本地文件列表。
func (p *Package) Files() ([]string, error) {
	entries, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	files := make([]string, len(entries))
	for i, entry := range entries {
		files[i] = entry.File
	}
	return files, nil
}

// ModTime 返回所有匹配文件中最新的修改时间；空包返回零值。
func (p *Package) ModTime() (time.Time, error) {
	files, err := p.Files()
	if err != nil {
		return time.Time{}, err
	}

	var newest time.Time
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return time.Time{}, fmt.Errorf("stat %s: %w", file, err)
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, nil
}
