package wishlist

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Add(userID, productID int, updatedAt string) ([]int, error) {
	return s.repo.Add(userID, productID, updatedAt)
}

func (s *Service) Remove(userID, productID int, updatedAt string) ([]int, error) {
	return s.repo.Remove(userID, productID, updatedAt)
}

func (s *Service) Get(userID int) ([]int, error) {
	return s.repo.Get(userID)
}
