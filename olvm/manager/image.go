package manager

import (
	"os"
	"path/filepath"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/Cloud-Foundations/olvm/lib/fsutil"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

func (m *Manager) checkImageAvailable(name string) error {
	_, err := m.store.GetImage(name, m.node)
	if err == nil {
		return errors.NewConflictError("image", name)
	}
	var notFoundError *errors.NotFoundError
	if errors.As(err, &notFoundError) {
		return nil
	}
	return err
}

func (m *Manager) createImage(image proto.Image) (proto.Image, error) {
	if err := validateName("name", image.Name); err != nil {
		return proto.Image{}, err
	}
	if image.Backend == "" {
		return proto.Image{}, errors.NewValidationError("backend", "required")
	}
	if image.File == "" {
		return proto.Image{}, errors.NewValidationError("file", "required")
	}
	backend := m.config.GetBackend(image.Backend)
	if backend == nil {
		return proto.Image{}, errors.NewUnknownBackendError(image.Backend)
	}
	if fi, err := os.Stat(image.File); err != nil {
		return proto.Image{}, errors.NewValidationError("file", err.Error())
	} else if !fi.Mode().IsRegular() {
		return proto.Image{}, errors.NewValidationError("file",
			image.File+" is not a regular file")
	}
	if err := m.checkImageAvailable(image.Name); err != nil {
		return proto.Image{}, err
	}
	image.Node = m.node
	filename := filepath.Join(backend.ImagePath, image.Name+".image")
	if err := os.MkdirAll(backend.ImagePath, fsutil.DirPerms); err != nil {
		return proto.Image{}, err
	}
	err := fsutil.CopyFileExclusive(filename, image.File,
		fsutil.PublicFilePerms)
	if err != nil {
		if os.IsExist(err) {
			return proto.Image{}, errors.NewConflictError("image file",
				filename)
		}
		return proto.Image{}, err
	}
	image.File = filename
	if err := m.store.CreateImage(image); err != nil {
		fsutil.ForceRemove(filename)
		return proto.Image{}, err
	}
	if err := m.backend.CreateImage(&image); err != nil {
		m.logger.Printf("error creating image: %s, rolling back: %s\n",
			image.Name, err)
		if err := m.store.DeleteImage(image.Name, m.node); err != nil {
			m.logger.Printf("error deleting image: %s: %s\n", image.Name, err)
		}
		if err := fsutil.ForceRemove(filename); err != nil {
			m.logger.Println(err)
		}
		return proto.Image{}, err
	}
	m.logger.Printf("created image: %s\n", image.Name)
	return image, nil
}

func (m *Manager) deleteImage(name string) error {
	image, err := m.store.GetImage(name, m.node)
	if err != nil {
		return err
	}
	if err := m.backend.DeleteImage(&image); err != nil {
		return err
	}
	if err := m.store.DeleteImage(name, m.node); err != nil {
		return err
	}
	if err := fsutil.ForceRemove(image.File); err != nil {
		m.logger.Println(err)
	}
	m.logger.Printf("deleted image: %s\n", name)
	return nil
}

// updateImage replaces the backend and parameters of an image. The image
// file cannot be changed.
func (m *Manager) updateImage(image proto.Image) (proto.Image, error) {
	if image.Name == "" {
		return proto.Image{}, errors.NewValidationError("name", "required")
	}
	oldImage, err := m.store.GetImage(image.Name, m.node)
	if err != nil {
		return proto.Image{}, err
	}
	if image.Backend == "" {
		image.Backend = oldImage.Backend
	} else if m.config.GetBackend(image.Backend) == nil {
		return proto.Image{}, errors.NewUnknownBackendError(image.Backend)
	}
	image.File = oldImage.File
	image.Node = m.node
	if err := m.store.UpdateImage(image); err != nil {
		return proto.Image{}, err
	}
	return image, nil
}
