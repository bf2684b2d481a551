package lifecycle

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lunaura/app/models/reading"
	"lunaura/app/repositories"
)

// Store 产品描述和对应仓库的注册表
type Store struct {
	products map[string]Product
	repos    map[string]*repositories.ReadingRepository
	order    []string
}

// NewStore 为每个产品创建一个仓库
func NewStore(db *gorm.DB, products []Product) *Store {
	s := &Store{
		products: make(map[string]Product, len(products)),
		repos:    make(map[string]*repositories.ReadingRepository, len(products)),
	}
	for _, p := range products {
		s.products[p.Kind] = p
		s.repos[p.Kind] = repositories.NewReadingRepository(db, p.New)
		s.order = append(s.order, p.Kind)
	}
	return s
}

// Kinds 已注册的产品，按注册顺序
func (s *Store) Kinds() []string {
	return append([]string(nil), s.order...)
}

// Product 查找产品描述
func (s *Store) Product(kind string) (Product, *repositories.ReadingRepository, error) {
	p, ok := s.products[kind]
	if !ok {
		return Product{}, nil, E(NotFound, "Unknown product")
	}
	return p, s.repos[kind], nil
}

// Repo 产品对应的仓库，未注册时返回 nil
func (s *Store) Repo(kind string) *repositories.ReadingRepository {
	return s.repos[kind]
}

// New 以产品的初始状态构造一条新记录
func (s *Store) New(kind string) (reading.Record, error) {
	p, _, err := s.Product(kind)
	if err != nil {
		return nil, err
	}
	rec := p.New()
	rec.State().Status = p.InitialStatus
	return rec, nil
}

// Create 保存新记录
func (s *Store) Create(ctx context.Context, kind string, rec reading.Record) error {
	p, repo, err := s.Product(kind)
	if err != nil {
		return err
	}
	if rec.State().Status == "" {
		rec.State().Status = p.InitialStatus
	}
	return repo.Create(ctx, rec)
}

// Load 读取记录，不存在时返回 NotFound
func (s *Store) Load(ctx context.Context, kind, id string) (reading.Record, error) {
	_, repo, err := s.Product(kind)
	if err != nil {
		return nil, err
	}
	rec, err := repo.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, Wrap(NotFound, err, "Reading not found")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load %s reading", kind)
	}
	return rec, nil
}

// Item 个人中心列表里的一条
type Item struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	IsPaid    bool   `json:"is_paid"`
	Rating    *int   `json:"rating,omitempty"`
	CreatedAt string `json:"created_at"`

	createdAt int64
}

// Latest 合并所有产品的最近记录，按创建时间倒序
// kind 为空时从每个表各取 perTable 条再合并
func (s *Store) Latest(ctx context.Context, deviceID string, kinds []string, perTable, offset int) ([]Item, error) {
	var items []Item
	for _, kind := range kinds {
		repo := s.repos[kind]
		if repo == nil {
			continue
		}
		records, err := repo.LatestByDevice(ctx, deviceID, perTable, offset)
		if err != nil {
			return nil, errors.Wrapf(err, "latest %s", kind)
		}
		for _, rec := range records {
			items = append(items, toItem(kind, rec))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].createdAt > items[j].createdAt
	})
	return items, nil
}

func toItem(kind string, rec reading.Record) Item {
	st := rec.State()
	return Item{
		Type:      kind,
		ID:        st.ID,
		Title:     rec.Title(),
		Status:    st.Status,
		IsPaid:    st.IsPaid,
		Rating:    st.Rating,
		CreatedAt: st.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		createdAt: st.CreatedAt.UnixNano(),
	}
}
