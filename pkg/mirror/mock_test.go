package mirror

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yuya-takeyama/s3-tree-mirror/pkg/storage"
)

// fakeNode is a folder or file in fakeClient. Unlike the real backends, a fake folder
// may hold several children with the same name.
type fakeNode struct {
	id       string
	name     string
	isDir    bool
	size     int64
	children []*fakeNode
}

// fakeClient is an in-memory implementation of storage.Client for testing
type fakeClient struct {
	root  *fakeNode
	nodes map[string]*fakeNode

	copyErrs       map[string]error // keyed by file name
	listFolderErrs map[string]error // keyed by folder ID
	listFileErrs   map[string]error // keyed by folder ID
	onCopy         func(file storage.File)

	createFolderCalls int
	copyCalls         int
}

func newFakeClient() *fakeClient {
	root := &fakeNode{id: "root", name: "root", isDir: true}
	return &fakeClient{
		root:           root,
		nodes:          map[string]*fakeNode{root.id: root},
		copyErrs:       map[string]error{},
		listFolderErrs: map[string]error{},
		listFileErrs:   map[string]error{},
	}
}

func (c *fakeClient) add(parentID, name string, isDir bool, size int64) *fakeNode {
	parent, ok := c.nodes[parentID]
	if !ok || !parent.isDir {
		panic(fmt.Sprintf("fake: no folder %q", parentID))
	}

	id := parentID + "/" + name
	for n := 2; c.nodes[id] != nil; n++ {
		id = fmt.Sprintf("%s/%s#%d", parentID, name, n)
	}

	node := &fakeNode{id: id, name: name, isDir: isDir, size: size}
	parent.children = append(parent.children, node)
	c.nodes[id] = node
	return node
}

func (c *fakeClient) mkdir(parentID, name string) string {
	return c.add(parentID, name, true, 0).id
}

func (c *fakeClient) mkfile(parentID, name string, size int64) string {
	return c.add(parentID, name, false, size).id
}

// childrenNamed returns the IDs of the children of folderID named name, in insertion order.
func (c *fakeClient) childrenNamed(folderID, name string) []string {
	var ids []string
	for _, child := range c.nodes[folderID].children {
		if child.name == name {
			ids = append(ids, child.id)
		}
	}
	return ids
}

// tree lists every path under folderID, folders with a trailing slash.
func (c *fakeClient) tree(folderID string) []string {
	var paths []string
	var walk func(n *fakeNode, prefix string)
	walk = func(n *fakeNode, prefix string) {
		for _, child := range n.children {
			p := prefix + child.name
			if child.isDir {
				paths = append(paths, p+"/")
				walk(child, p+"/")
			} else {
				paths = append(paths, p)
			}
		}
	}
	walk(c.nodes[folderID], "")
	sort.Strings(paths)
	return paths
}

func folderOf(n *fakeNode) storage.Folder {
	return storage.Folder{ID: n.id, Name: n.name}
}

func fileOf(n *fakeNode) storage.File {
	return storage.File{ID: n.id, Name: n.name, Size: n.size}
}

func (c *fakeClient) Root(ctx context.Context) (storage.Folder, error) {
	return folderOf(c.root), nil
}

func (c *fakeClient) FolderByID(ctx context.Context, id string) (storage.Folder, error) {
	n, ok := c.nodes[id]
	if !ok || !n.isDir {
		return storage.Folder{}, fmt.Errorf("folder %s: %w", id, storage.ErrNotFound)
	}
	return folderOf(n), nil
}

func (c *fakeClient) folders(parent storage.Folder, match func(string) bool) storage.FolderIterator {
	if err := c.listFolderErrs[parent.ID]; err != nil {
		return storage.FolderError(err)
	}
	var folders []storage.Folder
	for _, child := range c.nodes[parent.ID].children {
		if child.isDir && match(child.name) {
			folders = append(folders, folderOf(child))
		}
	}
	return storage.NewFolderSliceIterator(folders)
}

func (c *fakeClient) Folders(ctx context.Context, parent storage.Folder) storage.FolderIterator {
	return c.folders(parent, func(string) bool { return true })
}

func (c *fakeClient) FoldersByName(ctx context.Context, parent storage.Folder, name string) storage.FolderIterator {
	return c.folders(parent, func(n string) bool { return n == name })
}

func (c *fakeClient) CreateFolder(ctx context.Context, parent storage.Folder, name string) (storage.Folder, error) {
	c.createFolderCalls++
	return folderOf(c.add(parent.ID, name, true, 0)), nil
}

func (c *fakeClient) files(parent storage.Folder, match func(string) bool) storage.FileIterator {
	if err := c.listFileErrs[parent.ID]; err != nil {
		return storage.FileError(err)
	}
	var files []storage.File
	for _, child := range c.nodes[parent.ID].children {
		if !child.isDir && match(child.name) {
			files = append(files, fileOf(child))
		}
	}
	return storage.NewFileSliceIterator(files)
}

func (c *fakeClient) Files(ctx context.Context, parent storage.Folder) storage.FileIterator {
	return c.files(parent, func(string) bool { return true })
}

func (c *fakeClient) FilesByName(ctx context.Context, parent storage.Folder, name string) storage.FileIterator {
	return c.files(parent, func(n string) bool { return n == name })
}

func (c *fakeClient) CopyFile(ctx context.Context, file storage.File, target storage.Folder, name string) (storage.File, error) {
	c.copyCalls++
	if c.onCopy != nil {
		c.onCopy(file)
	}
	if err := c.copyErrs[file.Name]; err != nil {
		return storage.File{}, err
	}
	src := c.nodes[file.ID]
	return fileOf(c.add(target.ID, name, false, src.size)), nil
}

func joinLines(paths []string) string {
	return strings.Join(paths, "\n")
}
