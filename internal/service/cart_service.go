package service

import (
	"context"
	"sort"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/repository"
)

// CartCourse 购物车中的课程（用于响应）
type CartCourse struct {
	ID       uint               `json:"id"`
	Name     string             `json:"name"`
	Cover    string             `json:"course_cover"`
	Price    models.Money       `json:"price"`
	Credit   int                `json:"credit"`
	Discount DiscountDescriptor `json:"discount"`
	Selected bool               `json:"selected"`
}

// AddToCartResult 加入购物车结果
type AddToCartResult struct {
	Added     bool  `json:"added"`
	CartTotal int64 `json:"cart_total"`
}

// CartService 购物车服务
type CartService struct {
	store          cache.CartStore
	courseRepo     repository.CourseRepository
	userCourseRepo repository.UserCourseRepository
	discounts      *DiscountEngine
}

// NewCartService 创建购物车服务
func NewCartService(store cache.CartStore, courseRepo repository.CourseRepository, userCourseRepo repository.UserCourseRepository, discounts *DiscountEngine) *CartService {
	return &CartService{
		store:          store,
		courseRepo:     courseRepo,
		userCourseRepo: userCourseRepo,
		discounts:      discounts,
	}
}

// Add 加入购物车，已存在时直接返回当前数量
func (s *CartService) Add(ctx context.Context, userID, courseID uint, selected bool) (*AddToCartResult, error) {
	course, err := s.courseRepo.GetPublishedByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	owned, err := s.userCourseRepo.Owns(userID, courseID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, ErrCourseAlreadyOwned
	}
	exists, err := s.store.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.store.Set(ctx, userID, courseID, selected); err != nil {
			return nil, err
		}
	}
	total, err := s.store.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AddToCartResult{Added: !exists, CartTotal: total}, nil
}

// List 购物车列表，已下架或删除的课程不展示但保留在购物车中
func (s *CartService) List(ctx context.Context, userID uint) ([]CartCourse, error) {
	entries, err := s.store.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildCartCourses(entries, false)
}

// SelectedCourses 勾选的已上架课程，用于结算页
func (s *CartService) SelectedCourses(ctx context.Context, userID uint) ([]CartCourse, error) {
	entries, err := s.store.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrCartEmpty
	}
	return s.buildCartCourses(entries, true)
}

// SetSelection 修改单个课程勾选状态，课程已不可售时从购物车移除
func (s *CartService) SetSelection(ctx context.Context, userID, courseID uint, selected bool) error {
	exists, err := s.store.Exists(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCartItemNotFound
	}
	course, err := s.courseRepo.GetPublishedByID(courseID)
	if err != nil {
		return err
	}
	if course == nil {
		if err := s.store.Remove(ctx, userID, courseID); err != nil {
			return err
		}
		return ErrCourseNotFound
	}
	return s.store.Set(ctx, userID, courseID, selected)
}

// SetAllSelections 全选或全不选
func (s *CartService) SetAllSelections(ctx context.Context, userID uint, selected bool) (int, error) {
	updated, err := s.store.SetAll(ctx, userID, selected)
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		return 0, ErrCartEmpty
	}
	return updated, nil
}

// Remove 从购物车移除课程
func (s *CartService) Remove(ctx context.Context, userID, courseID uint) error {
	return s.store.Remove(ctx, userID, courseID)
}

func (s *CartService) buildCartCourses(entries map[uint]bool, selectedOnly bool) ([]CartCourse, error) {
	ids := make([]uint, 0, len(entries))
	for courseID, selected := range entries {
		if selectedOnly && !selected {
			continue
		}
		ids = append(ids, courseID)
	}
	if len(ids) == 0 {
		return []CartCourse{}, nil
	}
	courses, err := s.courseRepo.ListPublishedByIDs(ids)
	if err != nil {
		return nil, err
	}
	descriptors, err := s.discounts.Describe(courses)
	if err != nil {
		return nil, err
	}
	items := make([]CartCourse, 0, len(courses))
	for _, course := range courses {
		items = append(items, CartCourse{
			ID:       course.ID,
			Name:     course.Name,
			Cover:    course.Cover,
			Price:    course.Price,
			Credit:   course.Credit,
			Discount: descriptors[course.ID],
			Selected: entries[course.ID],
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
