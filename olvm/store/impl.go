package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/Cloud-Foundations/olvm/lib/fsutil"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
	bolt "go.etcd.io/bbolt"
)

var (
	imagesBucket    = []byte("images")
	networksBucket  = []byte("networks")
	snapshotsBucket = []byte("snapshots")
	vmsBucket       = []byte("vms")

	allBuckets = [][]byte{imagesBucket, networksBucket, snapshotsBucket,
		vmsBucket}
)

func decode(data []byte, value interface{}) error {
	if err := json.Unmarshal(data, value); err != nil {
		return errors.NewStoreError("decode", err)
	}
	return nil
}

func makeKey(node uint, name string) []byte {
	return []byte(fmt.Sprintf("%d/%s", node, name))
}

func makeSnapshotKey(node uint, vmName, name string) []byte {
	return []byte(fmt.Sprintf("%d/%s/%s", node, vmName, name))
}

func openStore(filename string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(filename), fsutil.DirPerms); err != nil {
		return nil, errors.NewStoreError("open", err)
	}
	db, err := bolt.Open(filename, fsutil.PrivateFilePerms,
		&bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, errors.NewStoreError("open", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.NewStoreError("create buckets", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) create(bucket []byte, resource, name string, key []byte,
	value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewStoreError("encode", err)
	}
	var conflict bool
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get(key) != nil {
			conflict = true
			return nil
		}
		return b.Put(key, data)
	})
	if err != nil {
		return errors.NewStoreError("create "+resource, err)
	}
	if conflict {
		return errors.NewConflictError(resource, name)
	}
	return nil
}

func (s *Store) delete(bucket []byte, key []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
	if err != nil {
		return errors.NewStoreError("delete", err)
	}
	return nil
}

func (s *Store) get(bucket []byte, resource, name string, key []byte,
	value interface{}) error {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if stored := tx.Bucket(bucket).Get(key); stored != nil {
			data = append([]byte(nil), stored...)
		}
		return nil
	})
	if err != nil {
		return errors.NewStoreError("get "+resource, err)
	}
	if data == nil {
		return errors.NewNotFoundError(resource, name)
	}
	return decode(data, value)
}

// list calls fn for the value of every key with the given prefix. The data
// passed to fn are only valid for the duration of the call.
func (s *Store) list(bucket []byte, prefix []byte,
	fn func(data []byte) error) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(bucket).Cursor()
		for key, data := cursor.Seek(prefix); key != nil &&
			bytes.HasPrefix(key, prefix); key, data = cursor.Next() {
			if err := fn(data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*errors.StoreError); ok {
			return err
		}
		return errors.NewStoreError("list", err)
	}
	return nil
}

func (s *Store) update(bucket []byte, resource, name string, key []byte,
	value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewStoreError("encode", err)
	}
	var missing bool
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get(key) == nil {
			missing = true
			return nil
		}
		return b.Put(key, data)
	})
	if err != nil {
		return errors.NewStoreError("update "+resource, err)
	}
	if missing {
		return errors.NewNotFoundError(resource, name)
	}
	return nil
}

func (s *Store) getVmByMac(mac string, node uint) (proto.VM, int, error) {
	vms, err := s.ListVMs(node)
	if err != nil {
		return proto.VM{}, 0, err
	}
	for _, vm := range vms {
		for index, iface := range vm.Interfaces {
			if strings.EqualFold(iface.MAC, mac) {
				return vm, index, nil
			}
		}
	}
	return proto.VM{}, 0, errors.NewNotFoundError("MAC address", mac)
}
